package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reliquary/internal/engine"
	"reliquary/internal/fileset"
)

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "detect <game-dir>",
		Short:       "Detect the engine of a game folder without importing",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := fileset.FromDir(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("scan game folder: %w", err)
			}

			detection := engine.Detect(set.Paths())

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary("Detection", []kv{
				{"Engine", detection.Engine.String()},
				{"Asset root", orDash(detection.AssetRoot)},
				{"Encrypted", yesNo(detection.Encrypted)},
				{"Files scanned", fmt.Sprintf("%d", set.Len())},
			}))
			if detection.Engine == engine.TagAuto {
				fmt.Fprintln(cmd.OutOrStdout(), "No engine markers found; pass --engine on import to force one.")
			}
			return nil
		},
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
