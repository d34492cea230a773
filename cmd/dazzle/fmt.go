package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manwithacat/dazzle-sub010/internal/ast"
	"github.com/manwithacat/dazzle-sub010/internal/module"
	"github.com/manwithacat/dazzle-sub010/internal/parser"
	"github.com/manwithacat/dazzle-sub010/spec"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>...",
	Short: "Print spec files in canonical form",
	Long: `fmt parses each file and prints it back in canonical layout:
one declaration per blank-line-separated block, two-space indentation, and
normalized spacing. Files with parse errors are reported and left out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolP("write", "w", false, "rewrite files in place instead of printing")
}

func runFmt(cmd *cobra.Command, args []string) error {
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		p := parser.New(content, logger, spec.DefaultConfig())
		tree := p.ParseModule()
		if tree.HasErrors() {
			mod := module.Lower(tree, content, path, "", logger, spec.DefaultConfig())
			renderDiagnostics(cmd, mod.Diagnostics)
			exitCode = 1
			continue
		}

		formatted := ast.Print(tree)
		if write {
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				return err
			}
			continue
		}
		if len(args) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatted)
	}
	return nil
}
