package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/manwithacat/dazzle-sub010/spec"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the modules and declarations of a project",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	model, _, err := compileProject(cmd)
	if err == errReported {
		exitCode = 1
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	for _, info := range model.Modules {
		bold.Fprintf(out, "%s\n", info.Name)
		if len(info.Uses) > 0 {
			dim.Fprintf(out, "  uses: %v\n", info.Uses)
		}
		for id := spec.ID(0); int(id) < model.DeclCount(); id++ {
			decl := model.Decl(id)
			di := decl.Info()
			if di.Module != info.Name {
				continue
			}
			fmt.Fprintf(out, "  %-12s %s\n", di.Kind, di.Name)
		}
	}
	return nil
}
