/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <user-id>",
	Short: "List the snapshots of a user",
	Long: `List the snapshot ids of a user, oldest first.

Example:
  osuvault history 124493`,
	Args: cobra.ExactArgs(1),
	RunE: withRuntime(func(cmd *cobra.Command, rt *runtime, args []string) error {
		key, err := userKey(args[0])
		if err != nil {
			return err
		}

		ids, err := rt.users.History(cmd.Context(), key)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			cmd.Printf("No snapshots for %s\n", key)
			return nil
		}
		for _, id := range ids {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, id.Time().UTC().Format(time.RFC3339))
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
