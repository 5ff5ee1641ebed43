package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"revoice/internal/config"
	"revoice/internal/logging"
	"revoice/internal/queue"
	"revoice/internal/translation"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var targetLanguage string
	var provider string

	cmd := &cobra.Command{
		Use:   "translate <transcription-id>",
		Short: "Translate a completed transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transcription ID %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				service := translation.NewService(cfg, store, logging.NewNop(), nil)
				record, err := service.CreateTranslation(cmd.Context(), translation.CreateRequest{
					TranscriptionID: id,
					TargetLanguage:  targetLanguage,
					Provider:        provider,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Translation %s created\n", record.ID)
				fmt.Fprintf(out, "  Target language:  %s\n", record.TargetLanguage)
				fmt.Fprintf(out, "  Quality score:    %.2f\n", record.QualityScore)
				fmt.Fprintf(out, "  Estimated cost:   $%.4f\n", record.EstimatedCost)
				fmt.Fprintf(out, "  Processing time:  %.1fs\n", record.ProcessingSeconds)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&targetLanguage, "target", "t", "", "Target language (defaults to the item's configured target)")
	cmd.Flags().StringVar(&provider, "provider", "", "Translation provider label to record")
	return cmd
}
