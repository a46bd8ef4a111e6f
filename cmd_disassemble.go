package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"nilanc/bytecode"
	"nilanc/image"
)

// disassembleCmd reads an assembled image and prints a human-readable
// per-function instruction listing. It is a dev aid only: there is no
// in-repository VM to run the image against.
type disassembleCmd struct {
	raw bool
}

func (*disassembleCmd) Name() string     { return "disassemble" }
func (*disassembleCmd) Synopsis() string { return "Print the instructions in a compiled image" }
func (*disassembleCmd) Usage() string {
	return `disassemble <image>:
  Print each function's globals and instructions in <image>.
`
}
func (d *disassembleCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&d.raw, "raw", false, "print each global's length instead of its contents (function names are resolved either way)")
}

func (c *disassembleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	logrus.WithField("image", args[0]).Info("disassembling")

	data, err := os.ReadFile(args[0])
	if err != nil {
		logrus.WithError(err).Error("failed to read image")
		return subcommands.ExitFailure
	}

	globals, functions, err := image.Read(data)
	if err != nil {
		logrus.WithError(err).Error("failed to read image")
		return subcommands.ExitFailure
	}

	for i, g := range globals {
		kind := "var"
		if g.IsConstant {
			kind = "const"
		}
		if c.raw {
			fmt.Printf(".global %d %s len=%d\n", i, kind, len(g.Bytes))
		} else {
			fmt.Printf(".global %d %s %q\n", i, kind, g.Bytes)
		}
	}

	for _, fn := range functions {
		fmt.Printf("\nfn %s returns=%d params=%d locals=%d\n", fn.Name, fn.ReturnSlots, fn.ParamCount, fn.LocalSlotCount)
		for i, instr := range fn.Instructions {
			line, err := bytecode.Disassemble(instr)
			if err != nil {
				logrus.WithError(err).Error("failed to disassemble instruction")
				return subcommands.ExitFailure
			}
			fmt.Printf("  %4d  %s\n", i, line)
		}
	}

	logrus.WithField("functions", len(functions)).Info("done")
	return subcommands.ExitSuccess
}
