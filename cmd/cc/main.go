package main

import (
	"log"
	"os"
	"strings"

	"github.com/teris-io/cli"

	"github.com/hmny-labs/tinycc/internal/driver"
)

var Description = strings.ReplaceAll(`
tinycc compiles a single-function, int-only subset of C down to GNU/AT&T
x86-64 assembly for the System V ABI. It shells out to gcc for
preprocessing and, unless asked to stop earlier, for assembling and
linking the final binary.
`, "\n", " ")

func handlerFor(stage driver.Stage) func(args []string, options map[string]string) int {
	return func(args []string, options map[string]string) int {
		logger := log.New(os.Stderr, "", log.LstdFlags)

		if len(args) != 1 {
			logger.Printf("[driver] expected exactly one input file, got %d", len(args))
			return 1
		}

		d := driver.New(args[0], stage, logger)
		if err := d.Run(); err != nil {
			logger.Printf("[driver] %v", err)
			return 1
		}
		return 0
	}
}

// buildCompiler declares the one positional argument (the .c file) and
// lets teris-io/cli own its validation and --help text. The stage-limit
// switches (-Sref, --lex, --parse, --tacky, --codegen, -S) are resolved
// separately in main, before Run ever sees argv: "-Sref" and "-S" don't
// fit the short-flag/long-flag split teris-io/cli's option parsing
// assumes, so they're stripped from argv first and handled by
// driver.ParseStageFlag instead.
func buildCompiler(stage driver.Stage) interface {
	Run(args []string, out *os.File) int
} {
	return cli.New(Description).
		WithArg(cli.NewArg("input", "The C source (.c) file to compile")).
		WithAction(handlerFor(stage))
}

func main() {
	rawArgs := os.Args[1:]

	if containsHelpFlag(rawArgs) {
		os.Exit(buildCompiler(driver.StageAll).Run(os.Args, os.Stdout))
	}

	stage, remaining := driver.ParseStageFlag(rawArgs)
	sanitized := append([]string{os.Args[0]}, remaining...)

	os.Exit(buildCompiler(stage).Run(sanitized, os.Stdout))
}

func containsHelpFlag(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return false
}
