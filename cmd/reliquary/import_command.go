package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"reliquary/internal/engine"
	"reliquary/internal/fileset"
	"reliquary/internal/importer"
	"reliquary/internal/logging"
	"reliquary/internal/vault"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var engineFlag string
	var keyFlag string

	cmd := &cobra.Command{
		Use:   "import <game-dir>",
		Short: "Import a game folder into the asset vault",
		Long: `Import scans a game folder, detects the engine, decodes its archives
and encrypted assets, and stores the results in the vault.

Examples:
  reliquary import ~/games/MoonlitManor
  reliquary import --engine rmMV --key d41d8cd98f00b204e9800998ecf8427e ~/games/Locked`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			override, err := engine.Parse(engineFlag)
			if err != nil {
				return err
			}

			dir := strings.TrimSpace(args[0])
			set, err := fileset.FromDir(dir)
			if err != nil {
				return fmt.Errorf("scan game folder: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			store, err := vault.Open(cfg)
			if err != nil {
				return fmt.Errorf("open vault: %w", err)
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			seen := map[importer.Phase]bool{}
			onProgress := func(p importer.Progress) {
				if seen[p.Phase] {
					return
				}
				seen[p.Phase] = true
				switch p.Phase {
				case importer.PhaseDetecting:
					fmt.Fprintln(out, "Detecting engine...")
				case importer.PhaseDecrypting:
					fmt.Fprintf(out, "Decoding assets (%s)...\n", p.Engine)
				case importer.PhaseStoring:
					fmt.Fprintln(out, "Storing assets...")
				case importer.PhaseDone:
					fmt.Fprintf(out, "Done: %d assets, %d skipped\n", p.Processed, p.Skipped)
				}
			}

			result, err := importer.New(store, logger).Run(runCtx, set, importer.Options{
				Engine:     override,
				KeyHex:     strings.TrimSpace(keyFlag),
				FolderName: filepath.Base(filepath.Clean(dir)),
				BatchSize:  cfg.Import.BatchSize,
				OnProgress: onProgress,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSummary("Import", []kv{
				{"Game", result.GameTitle},
				{"Engine", result.Engine.String()},
				{"Assets stored", fmt.Sprintf("%d", result.AssetCount)},
				{"Skipped", fmt.Sprintf("%d", result.Skipped)},
				{"Import ID", result.ImportID},
				{"Vault", store.Path()},
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&engineFlag, "engine", "e", "", "Engine override (rm2003, rmXP, rmVX, rmVXAce, rmMV, rmMZ, tcoaal)")
	cmd.Flags().StringVarP(&keyFlag, "key", "k", "", "Hex decryption key override for MV/MZ games")

	return cmd
}
