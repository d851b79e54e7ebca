package logflags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var cconv = false
var dump = false
var extract = false

var logOut io.WriteCloser

func makeLogger(flag bool, fields Fields) Logger {
	lf := loggerFactory
	if lf == nil {
		lf = newLogrusLogger
	}
	return lf(flag, fields, logOut)
}

func newLogrusLogger(flag bool, fields Fields, out io.Writer) Logger {
	logger := logrus.New().WithFields(logrus.Fields(fields))
	logger.Logger.Formatter = &textFormatter{}
	if out != nil {
		logger.Logger.Out = out
	} else {
		logger.Logger.Out = os.Stderr
	}
	logger.Logger.Level = logrus.DebugLevel
	if !flag {
		logger.Logger.Level = logrus.ErrorLevel
	}
	return &logrusLogger{logger}
}

// Cconv returns true if the calling convention resolver should log its
// probe results.
func Cconv() bool {
	return cconv
}

// CconvLogger returns a logger for the calling convention resolver.
func CconvLogger() Logger {
	return makeLogger(cconv, Fields{"layer": "cconv"})
}

// Dump returns true if the program dump loader should log.
func Dump() bool {
	return dump
}

// DumpLogger returns a logger for the program dump loader.
func DumpLogger() Logger {
	return makeLogger(dump, Fields{"layer": "dump"})
}

// Extract returns true if the document extraction should log.
func Extract() bool {
	return extract
}

// ExtractLogger returns a logger for document extraction.
func ExtractLogger() Logger {
	return makeLogger(extract, Fields{"layer": "extract"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the logging flags based on the contents of logstr. If logDest
// is not empty logs are redirected there: either a file path or a file
// descriptor number.
func Setup(logFlag bool, logstr, logDest string) error {
	if logDest != "" {
		n, err := strconv.Atoi(logDest)
		if err == nil {
			logOut = os.NewFile(uintptr(n), "pcodex-logs")
		} else {
			fh, err := os.Create(logDest)
			if err != nil {
				return fmt.Errorf("could not create log file: %v", err)
			}
			logOut = fh
		}
	}
	if !logFlag {
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "extract"
	}
	for _, logcmd := range strings.Split(logstr, ",") {
		switch logcmd {
		case "cconv":
			cconv = true
		case "dump":
			dump = true
		case "extract":
			extract = true
		}
	}
	return nil
}

// Close closes the logger output file, if one was set with Setup.
func Close() {
	if logOut != nil {
		logOut.Close()
	}
}

// textFormatter formats log entries as "time level msg key=value".
type textFormatter struct{}

func (f *textFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(entry.Time.Format("2006-01-02T15:04:05"))
	b.WriteByte(' ')
	b.WriteString(entry.Level.String())
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
