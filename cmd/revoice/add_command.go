package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"revoice/internal/config"
	"revoice/internal/media"
	"revoice/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var title string
	var sourceLanguage string
	var targetLanguage string
	var userID string

	cmd := &cobra.Command{
		Use:   "add <audio-file> [audio-file...]",
		Short: "Queue audio files for transcription",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, arg := range args {
					item, err := enqueueAudio(cmd, store, arg, queue.NewTranscriptionRequest{
						UserID:         userID,
						Title:          title,
						SourceLanguage: sourceLanguage,
						TargetLanguage: targetLanguage,
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Queued %s as item %d\n", filepath.Base(item.SourceFile), item.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Display title (defaults to the file name)")
	cmd.Flags().StringVar(&sourceLanguage, "source-language", "", "Spoken language hint (ISO 639-1)")
	cmd.Flags().StringVar(&targetLanguage, "target-language", "", "Translation target language (ISO 639-1)")
	cmd.Flags().StringVar(&userID, "user", "", "Owner identifier recorded with the item")
	return cmd
}

func enqueueAudio(cmd *cobra.Command, store *queue.Store, path string, req queue.NewTranscriptionRequest) (*queue.Transcription, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("audio file path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", absPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory", absPath)
	}
	audio, err := media.NewAudioFile(absPath, info.Name(), "", info.Size())
	if err != nil {
		return nil, err
	}

	req.SourceFile = audio.OriginalPath()
	item, err := store.NewTranscription(cmd.Context(), req)
	if err != nil {
		return nil, fmt.Errorf("enqueue %q: %w", absPath, err)
	}
	return item, nil
}
