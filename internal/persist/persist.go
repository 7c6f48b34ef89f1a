// Package persist serializes a finished capture session to disk: first the
// uncompressed WAV container, then the compressed MP3 output.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/voicescribe/voicescribe/internal/audio"
	"github.com/voicescribe/voicescribe/internal/media"
)

// ErrEmptyRecording is returned when the session holds no frames. No files
// are written in that case.
var ErrEmptyRecording = errors.New("no audio captured")

// TranscodeError reports a failed WAV→MP3 conversion. The WAV container is
// deliberately left on disk: transcription still needs it.
type TranscodeError struct {
	Err error
}

func (e *TranscodeError) Error() string { return "transcode recording: " + e.Err.Error() }
func (e *TranscodeError) Unwrap() error { return e.Err }

// Recording names the two files produced for one session. Paths are fixed,
// single-instance (only one session is ever live); the next session
// overwrites them.
type Recording struct {
	ContainerPath  string
	CompressedPath string
}

// Saver writes sessions to a fixed pair of paths.
type Saver struct {
	wavPath string
	mp3Path string
	trans   media.Transcoder
	log     zerolog.Logger
}

func NewSaver(wavPath, mp3Path string, trans media.Transcoder, logger zerolog.Logger) *Saver {
	return &Saver{wavPath: wavPath, mp3Path: mp3Path, trans: trans, log: logger}
}

// Save serializes the session's frames in capture order to the WAV container,
// then transcodes it to MP3. A WAV-write failure aborts before transcoding.
// A transcode failure surfaces as *TranscodeError with the WAV retained.
func (s *Saver) Save(ctx context.Context, session *audio.Session) (Recording, error) {
	pcm := session.Bytes()
	if len(pcm) == 0 {
		return Recording{}, ErrEmptyRecording
	}

	format := session.Format()
	s.log.Info().
		Str("path", s.wavPath).
		Int("frames", session.FrameCount()).
		Int("bytes", len(pcm)).
		Msg("persist: writing container")
	if err := audio.WriteWAVFile(s.wavPath, pcm, format); err != nil {
		return Recording{}, fmt.Errorf("persist recording: %w", err)
	}

	rec := Recording{ContainerPath: s.wavPath, CompressedPath: s.mp3Path}
	s.log.Info().Str("path", s.mp3Path).Msg("persist: transcoding to mp3")
	if err := s.trans.ToMP3(ctx, s.wavPath, s.mp3Path); err != nil {
		return rec, &TranscodeError{Err: err}
	}
	return rec, nil
}
