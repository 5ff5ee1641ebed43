package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"revoice/internal/config"
	"revoice/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show details for a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item ID %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", id)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(fmt.Sprintf("Item %d", item.ID), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Title", statusInfo, item.Title, colorize))
				fmt.Fprintln(out, renderStatusLine("Source file", statusInfo, item.SourceFile, colorize))
				fmt.Fprintln(out, renderStatusLine("Status", itemStatusKind(item.Status), string(item.Status), colorize))
				if item.ProgressStage != "" {
					fmt.Fprintln(out, renderStatusLine("Progress", statusInfo,
						fmt.Sprintf("%s (%.0f%%) %s", item.ProgressStage, item.ProgressPercent, item.ProgressMessage), colorize))
				}
				if item.DetectedLanguage != "" {
					fmt.Fprintln(out, renderStatusLine("Detected language", statusInfo, item.DetectedLanguage, colorize))
					fmt.Fprintln(out, renderStatusLine("Confidence", statusInfo, fmt.Sprintf("%.2f", item.Confidence), colorize))
				}
				if item.DurationSeconds > 0 {
					fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, fmt.Sprintf("%.1fs", item.DurationSeconds), colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Created", statusInfo, item.CreatedAt.Local().Format("2006-01-02 15:04:05"), colorize))
				fmt.Fprintln(out, renderStatusLine("Completed", statusInfo, formatOptionalTime(item.CompletedAt), colorize))
				if item.NeedsReview {
					fmt.Fprintln(out, renderStatusLine("Needs review", statusWarn, item.ReviewReason, colorize))
				}
				if item.ErrorMessage != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, item.ErrorMessage, colorize))
					if item.FailureCode != "" {
						fmt.Fprintln(out, renderStatusLine("Failure code", statusError, item.FailureCode, colorize))
					}
				}

				translations, err := store.TranslationsForTranscription(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				if len(translations) > 0 {
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader("Translations", colorize) {
						fmt.Fprintln(out, line)
					}
					rows := make([][]string, 0, len(translations))
					for _, tr := range translations {
						rows = append(rows, []string{
							tr.ID,
							tr.TargetLanguage,
							string(tr.Status),
							fmt.Sprintf("%.2f", tr.QualityScore),
							fmt.Sprintf("$%.4f", tr.EstimatedCost),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"ID", "Target", "Status", "Quality", "Est. Cost"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
					))
				}

				if showText && item.Text != "" {
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader("Transcript", colorize) {
						fmt.Fprintln(out, line)
					}
					fmt.Fprintln(out, item.Text)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showText, "text", false, "Print the recognized transcript text")
	return cmd
}

func itemStatusKind(status queue.Status) statusKind {
	switch status {
	case queue.StatusCompleted:
		return statusOK
	case queue.StatusFailed:
		return statusError
	case queue.StatusProcessing:
		return statusInfo
	default:
		return statusWarn
	}
}
