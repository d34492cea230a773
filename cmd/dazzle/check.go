package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile specs and report problems without writing a model",
	Long: `check compiles the project and prints every diagnostic.

Exit status is 0 when the specs are clean, 1 when problems were found, and 2
when the compiler itself could not run.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("strict", false, "treat warnings as failures")
}

func runCheck(cmd *cobra.Command, args []string) error {
	model, cfg, err := compileProject(cmd)
	if err == errReported {
		exitCode = 1
		return nil
	}
	if err != nil {
		return err
	}

	renderDiagnostics(cmd, model.Diagnostics)
	if model.Failed(cfg) {
		exitCode = 1
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d modules, %d declarations\n",
		len(model.Modules), model.DeclCount())
	return nil
}
