package transcriber

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"revoice/internal/media"
	"revoice/internal/services"
)

var commandContext = exec.CommandContext

const ffmpegBinary = "ffmpeg"

// preprocess converts the upload to mono 16 kHz WAV in the staging directory
// and returns a copy of the audio file pointing at the converted output.
func preprocess(ctx context.Context, audio media.AudioFile, stagingDir string) (media.AudioFile, error) {
	base := filepath.Base(audio.OriginalPath())
	base = strings.TrimSuffix(base, filepath.Ext(base))
	dest := filepath.Join(stagingDir, fmt.Sprintf("%s-16k.wav", base))

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", audio.OriginalPath(),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := commandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = "no ffmpeg output captured"
		}
		return audio, services.Wrap(
			services.ErrTransient,
			"transcriber",
			"preprocess",
			fmt.Sprintf("ffmpeg conversion failed: %s", detail),
			err,
		)
	}
	return audio.WithPreprocessedPath(dest), nil
}
