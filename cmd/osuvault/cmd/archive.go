/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/osuvault/pkg/model"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive <user.json>...",
	Short: "Archive osu! API user JSON",
	Long: `Archive users read from osu! API JSON files. Each file holds a single
user object or an array of them. Use - to read standard input.

Example:
  osuvault archive cookiezi.json mrekk.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: withRuntime(func(cmd *cobra.Command, rt *runtime, args []string) error {

		for _, path := range args {
			users, err := readUserFile(cmd, path)
			if err != nil {
				return err
			}
			ids, err := archiveUsers(cmd.Context(), rt, users)
			if err != nil {
				return err
			}
			for i, u := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", keyOf(u.ID), u.Username, ids[i])
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}

func readUserFile(cmd *cobra.Command, path string) ([]model.User, error) {
	if path == "-" {
		return readUsers(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	users, err := readUsers(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return users, nil
}

// readUsers decodes a user object or an array of users.
func readUsers(r io.Reader) ([]model.User, error) {
	br := bufio.NewReader(r)
	var first byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read users: %w", err)
		}
		if b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			first = b
			break
		}
	}
	if err := br.UnreadByte(); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var users []model.User
		if err := dec.Decode(&users); err != nil {
			return nil, fmt.Errorf("failed to parse users: %w", err)
		}
		return users, nil
	}

	var u model.User
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return []model.User{u}, nil
}

func archiveUsers(ctx context.Context, rt *runtime, users []model.User) ([]ksuid.KSUID, error) {
	ids := make([]ksuid.KSUID, 0, len(users))
	for _, u := range users {
		id, err := rt.users.Save(ctx, keyOf(u.ID), u)
		if err != nil {
			return nil, fmt.Errorf("failed to archive user %d: %w", u.ID, err)
		}
		rt.logger.Info("archived user", zap.Uint32("user_id", u.ID), zap.Stringer("snapshot", id))
		ids = append(ids, id)
	}
	return ids, nil
}
