// Package cmds implements the command line interface of pcodex.
package cmds

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pcodex/pcodex/pkg/cconv"
	"github.com/pcodex/pcodex/pkg/cconv/archdef"
	"github.com/pcodex/pcodex/pkg/config"
	"github.com/pcodex/pcodex/pkg/dump"
	"github.com/pcodex/pcodex/pkg/extract"
	"github.com/pcodex/pcodex/pkg/logflags"
	"github.com/pcodex/pcodex/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// archFlag selects a built-in architecture by language id or alias.
	archFlag string
	// dumpPath is the program dump to extract from.
	dumpPath string
	// outPath is where the extraction document is written; empty means stdout.
	outPath string
	// pretty indents the emitted document.
	pretty bool

	conf *config.Config
)

// New returns an initialized command tree.
func New() *cobra.Command {
	conf = config.LoadConfig()

	rootCommand := &cobra.Command{
		Use:   "pcodex",
		Short: "Extracts register and calling convention descriptions from disassembled binaries.",
		Long: `pcodex turns the architecture and compiler specification facts of an
already-disassembled binary into a machine readable JSON document: register
properties, data type sizes and, for every named calling convention, the
resolved integer and floating point parameter and return registers.`,
	}
	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable debug logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", "Comma separated list of components that should produce debug output: extract, cconv, dump.")
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Write logs to the specified file or file descriptor.")

	extractCommand := &cobra.Command{
		Use:   "extract",
		Short: "Build the extraction document for a program dump or a built-in architecture.",
		Long: `Build the extraction document.

The input is either a program dump exported by the analysis platform
(--dump) or the name of a built-in architecture (--arch). Exactly one of
the two must be given. The document is written to stdout unless --out is
set.`,
		RunE: extractCmd,
	}
	extractCommand.Flags().StringVar(&dumpPath, "dump", "", "Program dump to extract from.")
	extractCommand.Flags().StringVar(&archFlag, "arch", "", "Built-in architecture to extract, by language id or alias.")
	extractCommand.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout).")
	extractCommand.Flags().BoolVar(&pretty, "pretty", false, "Indent the emitted document.")
	rootCommand.AddCommand(extractCommand)

	conventionsCommand := &cobra.Command{
		Use:   "conventions [arch]",
		Short: "Resolve and print the calling convention registers of a built-in architecture.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  conventionsCmd,
	}
	rootCommand.AddCommand(conventionsCommand)

	archsCommand := &cobra.Command{
		Use:   "archs",
		Short: "List the built-in architectures.",
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range archdef.List() {
				fmt.Println(id)
			}
		},
	}
	rootCommand.AddCommand(archsCommand)

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pcodex %s\n%s\n", version.PcodexVersion, version.BuildInfo())
		},
	}
	rootCommand.AddCommand(versionCommand)

	return rootCommand
}

func extractCmd(cmd *cobra.Command, args []string) error {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		return err
	}
	defer logflags.Close()

	if dumpPath != "" && archFlag != "" {
		return fmt.Errorf("--dump and --arch are mutually exclusive")
	}
	if dumpPath == "" && archFlag == "" && conf.DefaultArch == "" {
		return fmt.Errorf("one of --dump and --arch is required")
	}

	var prog *dump.Program
	if dumpPath != "" {
		var err error
		prog, err = dump.Load(dumpPath)
		if err != nil {
			return err
		}
	} else {
		arch, err := archdef.Lookup(conf.ResolveArch(archFlag))
		if err != nil {
			return err
		}
		prog = &dump.Program{Arch: arch}
	}

	doc, err := extract.Run(prog)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("could not create output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	return extract.WriteJSON(out, doc, pretty || conf.PrettyJSON)
}

func conventionsCmd(cmd *cobra.Command, args []string) error {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		return err
	}
	defer logflags.Close()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	arch, err := archdef.Lookup(conf.ResolveArch(name))
	if err != nil {
		return err
	}
	table, err := cconv.Resolve(arch)
	if err != nil {
		return err
	}
	for _, conv := range arch.Conventions() {
		c := table[conv]
		fmt.Printf("%s\n", c.Name)
		fmt.Printf("\tinteger parameters: %s\n", registerNames(c.IntegerParams))
		fmt.Printf("\tfloat parameters:   %s\n", registerNames(c.FloatParams))
		fmt.Printf("\tinteger return:     %s\n", c.IntegerReturn)
		if c.FloatReturn != nil {
			fmt.Printf("\tfloat return:       %s\n", c.FloatReturn)
		} else {
			fmt.Printf("\tfloat return:       (through integer return register)\n")
		}
	}
	return nil
}

func registerNames(regs []*cconv.Register) string {
	if len(regs) == 0 {
		return "(none)"
	}
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.Name
	}
	return strings.Join(names, " ")
}
