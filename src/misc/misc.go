// contains some misc helper functions etc. for smash
package misc

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrorCheck is a function to throw error to the log and exit the program
func ErrorCheck(msg error) {
	if msg != nil {
		log.Fatalf("terminated\n\nERROR --> %v\n\n", msg)
	}
}

// CheckRequiredFlags is a function to check for required flags before running a smash subcommand
func CheckRequiredFlags(flags *pflag.FlagSet) error {
	requiredError := false
	flagName := ""

	flags.VisitAll(func(flag *pflag.Flag) {
		requiredAnnotation := flag.Annotations[cobra.BashCompOneRequiredFlag]
		if len(requiredAnnotation) == 0 {
			return
		}
		flagRequired := requiredAnnotation[0] == "true"
		if flagRequired && !flag.Changed {
			requiredError = true
			flagName = flag.Name
		}
	})

	if requiredError {
		return errors.New("Required flag `" + flagName + "` has not been set")
	}

	return nil
}

// StartLogging is a function to open (or create) the log file, along with any missing parent directories
func StartLogging(logFile string) (*os.File, error) {
	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("can't create specified directory for log: %v", dir)
		}
	}
	return os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
}

// CheckSTDIN is a function to check that STDIN can be read
func CheckSTDIN() error {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return fmt.Errorf("error with STDIN")
	}
	if (stat.Mode() & os.ModeNamedPipe) == 0 {
		return fmt.Errorf("no STDIN found")
	}
	return nil
}

// CheckFile is a function to check that a file can be read
func CheckFile(file string) error {
	if _, err := os.Stat(file); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %v", file)
		}
		return fmt.Errorf("can't access file (check permissions): %v", file)
	}
	return nil
}

// CheckExt is a function to check the extension of a file is one of exts, ignoring any trailing .gz
func CheckExt(file string, exts []string) error {
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(file, ".gz")), ".")
	for _, e := range exts {
		if ext != "" && strings.EqualFold(ext, e) {
			return nil
		}
	}
	return fmt.Errorf("file does not have recognised extension (%v): %v", strings.Join(exts, ", "), file)
}

// CheckInputs checks every input file can be read and has one of the extensions in exts.
// STDIN ("-") is checked instead of a file, and is used when there are no files.
func CheckInputs(files []string, exts []string) error {
	if len(files) == 0 {
		return CheckSTDIN()
	}
	for _, file := range files {
		if file == "-" {
			if err := CheckSTDIN(); err != nil {
				return err
			}
			continue
		}
		if err := CheckFile(file); err != nil {
			return err
		}
		if err := CheckExt(file, exts); err != nil {
			return err
		}
	}
	return nil
}

// SetProcessors caps the requested processors at the number available and sets GOMAXPROCS
func SetProcessors(proc int) int {
	if proc <= 0 || proc > runtime.NumCPU() {
		proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(proc)
	return proc
}

// Uint64SliceEqual returns true if two uint64[] are identical
func Uint64SliceEqual(a []uint64, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

// PrintMemUsage outputs the current, total and OS memory being used. As well as the number
// of garage collection cycles completed.
// lifted from: https://golangcode.com/print-the-current-memory-usage/
func PrintMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fmt.Sprintf("[ Heap Allocations: %vMb, OS Memory: %vMb, Num. GC cycles: %v ]", bToMb(m.HeapAlloc), bToMb(m.Sys), m.NumGC)
}

// bToMb converts bytes to megabytes
func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
