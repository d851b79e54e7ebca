package config

import "testing"

func TestResolveArch(t *testing.T) {
	c := &Config{
		DefaultArch: "x86:LE:64:default",
		ArchAliases: map[string]string{"linux64": "x86:LE:64:default"},
	}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty uses default", "", "x86:LE:64:default"},
		{"alias expands", "linux64", "x86:LE:64:default"},
		{"unknown passes through", "AARCH64:LE:64:v8A", "AARCH64:LE:64:v8A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ResolveArch(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
