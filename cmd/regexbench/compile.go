package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dontdude/regexbench/internal/config"
	"github.com/dontdude/regexbench/internal/engine"
	"github.com/dontdude/regexbench/internal/platform/native"
)

var (
	compileLanguage   string
	compileStandard   int
	compileExtensions bool
	compileSymbol     string
	compileInputs     []string
)

var compileCmd = &cobra.Command{
	Use:   "compile <source>",
	Short: "Compile a native engine source, load it and probe inputs",
	Long: `Compiles one C or C++ translation unit into a shared library with the
resolved toolchain, binds its match entry point and runs it on each --input.

Examples:
  regexbench compile engine.cpp --standard 17 --input abc --input ""`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compileLanguage, "language", "c++", "Source language: c or c++")
	compileCmd.Flags().IntVar(&compileStandard, "standard", 17, "Language standard revision")
	compileCmd.Flags().BoolVar(&compileExtensions, "extensions", false, "Enable GNU extensions")
	compileCmd.Flags().StringVar(&compileSymbol, "symbol", native.DefaultMatchSymbol, "Exported match symbol")
	compileCmd.Flags().StringArrayVar(&compileInputs, "input", nil, "Input to probe; may be repeated")
}

func runCompile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	spec := config.NativeEngine{
		Name:       args[0],
		Language:   compileLanguage,
		Standard:   compileStandard,
		Extensions: compileExtensions,
		Symbol:     compileSymbol,
	}
	v, err := spec.Version()
	if err != nil {
		return err
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	h, err := newHarness(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	art, err := h.compiler.Compile(ctx, string(src), v)
	if err != nil {
		return err
	}
	lib, err := engine.NewLibrary(art.Path, spec.MatchSymbol())
	if err != nil {
		return err
	}
	h.track(lib)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Compiled %s with %s (%s)\n", args[0], art.Compiler, v)
	for _, in := range compileInputs {
		matched, err := lib.Match(nil, []byte(in))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%q => %t\n", in, matched)
	}
	return nil
}
