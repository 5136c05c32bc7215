/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/osuvault/pkg/codec"
	"github.com/ssargent/osuvault/pkg/storage"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [user-id]",
	Short: "Check stored snapshots",
	Long: `Walk every snapshot in the store, check its checksum and decode it.
With a user id, only the latest snapshot of that user is checked.
Exits non-zero if anything is corrupt.

Examples:
  osuvault verify
  osuvault verify 124493`,
	Args: cobra.MaximumNArgs(1),
	RunE: withRuntime(func(cmd *cobra.Command, rt *runtime, args []string) error {
		if len(args) == 1 {
			return verifyUser(cmd.Context(), rt, cmd.OutOrStdout(), args[0])
		}
		return verifyStore(cmd.Context(), rt, cmd.OutOrStdout())
	}),
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// verifyUser checks that the latest snapshot of one user decodes.
func verifyUser(ctx context.Context, rt *runtime, w io.Writer, arg string) error {
	key, err := userKey(arg)
	if err != nil {
		return err
	}
	if err := rt.users.Check(ctx, key); err != nil {
		return err
	}
	fmt.Fprintf(w, "OK %s\n", key)
	return nil
}

// undecodable is a snapshot whose checksum holds but whose archive does not
// decode as a user.
type undecodable struct {
	key string
	id  ksuid.KSUID
	err error
}

func verifyStore(ctx context.Context, rt *runtime, w io.Writer) error {
	var bad []undecodable
	report, err := rt.store.Verify(ctx, func(key string, id ksuid.KSUID, env *codec.Envelope) error {
		if err := rt.users.CheckArchive(env.Archive); err != nil {
			rt.logger.Warn("undecodable snapshot", zap.String("key", key), zap.Stringer("id", id), zap.Error(err))
			bad = append(bad, undecodable{key: key, id: id, err: err})
		}
		return nil
	})
	if err != nil {
		return err
	}

	printReport(w, report, bad)
	if n := len(report.Corrupt) + len(bad); n > 0 {
		return fmt.Errorf("%d bad snapshots", n)
	}
	return nil
}

func printReport(w io.Writer, report *storage.VerifyReport, bad []undecodable) {
	fmt.Fprintf(w, "Keys: %d\n", report.Keys)
	fmt.Fprintf(w, "Snapshots: %d\n", report.Snapshots)
	fmt.Fprintf(w, "Bytes: %d\n", report.Bytes)
	for _, c := range report.Corrupt {
		fmt.Fprintf(w, "CORRUPT %s@%s: %v\n", c.Key, c.ID, c.Err)
	}
	for _, b := range bad {
		fmt.Fprintf(w, "UNDECODABLE %s@%s: %v\n", b.key, b.id, b.err)
	}
}
