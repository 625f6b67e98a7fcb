package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reliquary/internal/vault"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show vault contents and the last import",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			store, err := vault.Open(cfg)
			if err != nil {
				return fmt.Errorf("open vault: %w", err)
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			meta, ok, err := store.ImportMetadata(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "Vault at %s holds %d assets; no import recorded yet.\n", store.Path(), count)
				return nil
			}

			fmt.Fprintln(out, renderSummary("Vault", []kv{
				{"Game", meta.GameTitle},
				{"Engine", meta.Engine},
				{"Imported", meta.ImportedAt.Local().Format(time.RFC1123)},
				{"Assets", fmt.Sprintf("%d", meta.AssetCount)},
				{"Skipped", fmt.Sprintf("%d", meta.SkippedCount)},
				{"Import ID", meta.ImportID},
				{"Vault", store.Path()},
				{"Rows in vault", fmt.Sprintf("%d", count)},
			}))
			return nil
		},
	}
}
