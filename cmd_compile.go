package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"nilanc/analyzer"
	"nilanc/compileerr"
	"nilanc/image"
)

// compileCmd implements the compile command: the CLI contract of §6 —
// exit 0 on success, non-zero with "<kind> at (<line>,<col>)" on stderr
// for the first compile error.
type compileCmd struct{}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a source file to a bytecode image" }
func (*compileCmd) Usage() string {
	return `compile <input> <output>:
  Compile <input> and write the assembled image to <output>.
`
}
func (*compileCmd) SetFlags(f *flag.FlagSet) {}

func (c *compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	inputPath, outputPath := args[0], args[1]
	logrus.WithFields(logrus.Fields{"input": inputPath, "output": outputPath}).Info("compiling")

	src, err := os.ReadFile(inputPath)
	if err != nil {
		logrus.WithError(err).Error("failed to read input")
		return subcommands.ExitFailure
	}

	result, err := analyzer.New(string(src)).Compile()
	if err != nil {
		if cErr, ok := err.(*compileerr.Error); ok {
			fmt.Fprintln(os.Stderr, cErr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return subcommands.ExitFailure
	}

	data, err := image.Assemble(image.Program{Globals: result.Globals, Functions: result.Functions})
	if err != nil {
		logrus.WithError(err).Error("failed to assemble image")
		return subcommands.ExitFailure
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		logrus.WithError(err).Error("failed to write output")
		return subcommands.ExitFailure
	}

	logrus.WithFields(logrus.Fields{
		"output":    outputPath,
		"globals":   len(result.Globals),
		"functions": len(result.Functions),
		"bytes":     len(data),
	}).Info("compiled")
	return subcommands.ExitSuccess
}
