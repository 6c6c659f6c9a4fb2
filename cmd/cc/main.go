// Command cc is the driver binary: it wires the source, lexer, parser
// and codegen packages into a single-pass pipeline, lexing, parsing
// and generating the whole translation unit in one pass over the
// input before any assembly text is written out.
//
// Grounded on the original implementation's main.go pipeline
// (Compiler.New -> Compile -> write-or-run) and ajroetker-goat's
// cobra.Command construction for flag/argument handling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skx/cc/codegen"
	"github.com/skx/cc/diag"
	"github.com/skx/cc/lexer"
	"github.com/skx/cc/parser"
	"github.com/skx/cc/source"
)

var (
	outputPath string
	debug      bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "cc source.c",
	Short: "Compile a C subset to x86-64 NASM assembly",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write assembly to this file instead of stdout")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "annotate generated assembly with source line comments")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colour in diagnostic output")
}

func run(cmd *cobra.Command, args []string) error {
	filename := args[0]

	fi, err := source.Load(filename)
	if err != nil {
		return err
	}

	diags := diag.NewBag(fi)
	diags.NoColor = noColor

	lex := lexer.New(fi)
	prog := parser.ParseProgram(lex, diags)

	gen := codegen.New(diags)
	gen.Debug = debug

	var asm string
	if !diags.HadError() {
		asm, _ = gen.Generate(prog)
	}

	if diags.HadError() {
		fmt.Fprint(os.Stderr, diags.Render())
		os.Exit(1)
	}

	if outputPath == "" {
		fmt.Print(asm)
		return nil
	}
	return os.WriteFile(outputPath, []byte(asm), 0o644)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
