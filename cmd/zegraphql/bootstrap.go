package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create missing tables and indexes",
	Long: `Bootstrap creates the tables of every entity if they do not exist yet.
It holds a file lock next to the database while it runs, so concurrent
bootstraps of the same file wait for each other.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.bootstrap(cmd.Context()); err != nil {
			return NewStoreError("bootstrap", "", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Bootstrapped %s (%d entities)\n",
			rt.cfg.Database.Path, len(rt.service.Catalog().Entities()))
		return nil
	},
}
