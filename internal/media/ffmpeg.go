// Package media wraps the external transcoder. Conversion between container
// formats and sample rates is delegated to ffmpeg; nothing in here touches
// audio bytes directly.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Transcoder converts between audio container formats.
type Transcoder interface {
	// ToMP3 compresses a WAV container to MP3 at default quality.
	ToMP3(ctx context.Context, wavPath, mp3Path string) error
	// ResampleWAV rewrites a WAV container at the given rate and channel
	// layout, 16-bit samples.
	ResampleWAV(ctx context.Context, inPath, outPath string, sampleRate, channels int) error
}

// FFmpeg shells out to the ffmpeg binary on PATH.
type FFmpeg struct {
	Bin string
}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{Bin: "ffmpeg"}
}

func (f *FFmpeg) ToMP3(ctx context.Context, wavPath, mp3Path string) error {
	return f.run(ctx,
		"-y", "-i", wavPath,
		"-codec:a", "libmp3lame", "-qscale:a", "2",
		mp3Path,
	)
}

func (f *FFmpeg) ResampleWAV(ctx context.Context, inPath, outPath string, sampleRate, channels int) error {
	return f.run(ctx,
		"-y", "-i", inPath,
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-sample_fmt", "s16",
		"-f", "wav",
		outPath,
	)
}

func (f *FFmpeg) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, f.Bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.Bytes()))
	}
	return nil
}

// lastLine trims ffmpeg's banner noise down to the line that matters.
func lastLine(b []byte) []byte {
	b = bytes.TrimRight(b, "\n")
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		return b[i+1:]
	}
	return b
}
