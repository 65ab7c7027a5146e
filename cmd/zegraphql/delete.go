package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zekoder/zegraphql/business"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <entity> <id>...",
	Short: "Delete records by id",
	Long: `Delete removes records through the entity hooks, so deletions a hook
refuses (such as an industry still referenced by documents) are reported
and nothing is removed.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, ids := args[0], args[1:]

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		meta := business.RequestMeta{ZeAuthURL: rt.cfg.Auth.ZeAuthURL}

		if len(ids) == 1 {
			deleted, err := rt.service.Delete(cmd.Context(), entity, ids[0], meta)
			if err != nil {
				return NewStoreError("delete", entity, err)
			}
			if !deleted {
				return &CLIError{Operation: "delete", Cause: fmt.Sprintf("%s %s is still in use", entity, ids[0])}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", entity, ids[0])
			return nil
		}

		n, err := rt.service.DeleteMultiple(cmd.Context(), entity, ids, meta)
		if err != nil {
			return NewStoreError("delete", entity, err)
		}
		if n == 0 {
			return &CLIError{Operation: "delete", Cause: "a hook refused the deletion, nothing was removed"}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s\n", n, entity)
		return nil
	},
}
