/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/osuvault/pkg/model"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Print an archived user",
	Long: `Decode and print the latest snapshot of a user, or an older one with
--snapshot.

Example:
  osuvault show 124493 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: withRuntime(func(cmd *cobra.Command, rt *runtime, args []string) error {
		key, err := userKey(args[0])
		if err != nil {
			return err
		}
		snapshot, _ := cmd.Flags().GetString("snapshot")
		format, _ := cmd.Flags().GetString("format")

		var u model.User
		if snapshot == "" {
			u, err = rt.users.Load(cmd.Context(), key)
		} else {
			var id ksuid.KSUID
			id, err = ksuid.Parse(snapshot)
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q: %w", snapshot, err)
			}
			u, err = rt.users.LoadSnapshot(cmd.Context(), key, id)
		}
		if err != nil {
			return err
		}
		return writeUser(cmd.OutOrStdout(), u, format)
	}),
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().String("snapshot", "", "Snapshot id to show instead of the latest")
	showCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
}

func parseUserID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return uint32(id), nil
}

func writeUser(w io.Writer, u model.User, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(u); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(u); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q, want yaml or json", format)
	}
}
