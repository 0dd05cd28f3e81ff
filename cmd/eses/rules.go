package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abelbrown/eses/internal/inference"
)

func (c *cli) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the inference rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for i, r := range inference.DefaultRules() {
				fmt.Fprintf(w, "%d. %-40s %s\n", i+1, r.Name, r.String())
			}
			return nil
		},
	}
}
