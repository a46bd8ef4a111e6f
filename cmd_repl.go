package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"nilanc/analyzer"
	"nilanc/bytecode"
	"nilanc/compileerr"
)

// replCmd implements an interactive loop that compiles whatever has been
// typed so far and disassembles it. It stops at disassembly: there is no
// in-repository VM to run the result against.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Compile and disassemble source interactively" }
func (*replCmd) Usage() string {
	return `repl:
  Read source lines until a blank line, compile them, print the
  disassembly, and start over. Type exit to quit.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("nilanc repl — enter source, blank line to compile, \"exit\" to quit")

	rl, err := readline.New(">>> ")
	if err != nil {
		logrus.WithError(err).Error("failed to start readline")
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var lines []string
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(lines) == 0 {
				break
			}
			lines = nil
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.WithError(err).Error("readline failed")
			return subcommands.ExitFailure
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "exit" {
			break
		}
		if trimmed == "" {
			if len(lines) == 0 {
				continue
			}
			r.compileAndPrint(strings.Join(lines, "\n"))
			lines = nil
			rl.SetPrompt(">>> ")
			continue
		}

		lines = append(lines, line)
		rl.SetPrompt("... ")
	}

	return subcommands.ExitSuccess
}

func (r *replCmd) compileAndPrint(src string) {
	result, err := analyzer.New(src).Compile()
	if err != nil {
		if cErr, ok := err.(*compileerr.Error); ok {
			fmt.Println(cErr.Long())
		} else {
			fmt.Println(err)
		}
		return
	}

	for _, fn := range result.Functions {
		fmt.Printf("fn %s returns=%d params=%d locals=%d\n", fn.Name, fn.ReturnSlots, fn.ParamCount, fn.LocalSlotCount)
		for i, instr := range fn.Instructions {
			line, err := bytecode.Disassemble(instr)
			if err != nil {
				fmt.Println(err)
				return
			}
			fmt.Printf("  %4d  %s\n", i, line)
		}
	}
}
