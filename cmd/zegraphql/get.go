package main

import (
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <entity> <id>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		rec, err := rt.service.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return NewStoreError("get", args[0], err)
		}
		return writeRecord(cmd.OutOrStdout(), format, rec)
	},
}
