/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// forgetCmd represents the forget command
var forgetCmd = &cobra.Command{
	Use:   "forget <user-id>",
	Short: "Delete every snapshot of a user",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(cmd *cobra.Command, rt *runtime, args []string) error {
		key, err := userKey(args[0])
		if err != nil {
			return err
		}

		if err := rt.store.Delete(cmd.Context(), key); err != nil {
			return err
		}
		cmd.Printf("Forgot %s\n", key)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}
