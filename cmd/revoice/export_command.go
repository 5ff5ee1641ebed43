package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"revoice/internal/config"
	"revoice/internal/export"
	"revoice/internal/logging"
	"revoice/internal/queue"
	"revoice/internal/translation"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <translation-id>",
		Short: "Export a translation as subtitles, text, or a dubbing script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			translationID := strings.TrimSpace(args[0])
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				service := translation.NewService(cfg, store, logging.NewNop(), nil)
				data, resolved, err := service.DownloadTranslation(cmd.Context(), translationID, format)
				if err != nil {
					return err
				}

				target := strings.TrimSpace(outputPath)
				if target == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if target == "" {
					target = translationID + "." + resolved.Extension()
				}
				if err := os.WriteFile(target, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes, %s)\n", target, len(data), resolved)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatSRT),
		fmt.Sprintf("Export format (%s)", strings.Join(export.Formats(), ", ")))
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (use - for stdout)")
	return cmd
}
