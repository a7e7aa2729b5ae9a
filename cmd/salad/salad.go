package main

import (
	"github.com/spf13/cobra"
)

func NewSaladCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salad",
		Short: "salad resolves schema-annotated YAML and JSON documents",
		Long: `salad resolves schema-annotated YAML and JSON documents:
$import and $include directives, identifier scoping and namespace prefixes.`,
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cmd.AddCommand(NewResolveCmd(NewResolveOptions()))

	return cmd
}
