//go:build whisper_cpp

package whisper

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	whisperpkg "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog/log"
)

// EngineCPP is the whisper.cpp-backed implementation of Engine.
type EngineCPP struct {
	model    whisperpkg.Model
	threads  uint
	language string
	mu       sync.Mutex // Protect concurrent access to the model
}

func NewEngine(modelPath string) (Engine, error) {
	threads := uint(runtime.NumCPU())
	if v := os.Getenv("WHISPER_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			threads = uint(n)
			log.Info().Int("threads", n).Msg("whisper: using configured thread count")
		}
	}

	m, err := whisperpkg.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	log.Info().Str("model", modelPath).Msg("whisper: model loaded successfully")
	return &EngineCPP{
		model:    m,
		threads:  threads,
		language: "auto",
	}, nil
}

func (e *EngineCPP) Close() error {
	if e.model != nil {
		e.model.Close()
	}
	return nil
}

// SetLanguage configures the language for transcription. Use "auto" for auto-detection.
func (e *EngineCPP) SetLanguage(lang string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if lang == "" {
		lang = "auto"
	}
	e.language = lang
}

// Process implements Engine by running a full-context transcription.
// Processing is serialized to avoid whisper.cpp crashes.
func (e *EngineCPP) Process(samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Below ~100ms there is nothing to transcribe.
	if len(samples) < RequiredRate/10 {
		log.Debug().Int("samples", len(samples)).Msg("whisper: skipping too-short audio")
		return "", nil
	}

	ctx, err := e.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("create context: %w", err)
	}
	ctx.SetThreads(e.threads)
	_ = ctx.SetLanguage(e.language)
	ctx.SetSplitOnWord(true)
	ctx.SetTokenTimestamps(false)
	ctx.SetMaxSegmentLength(0)
	ctx.SetMaxTokensPerSegment(0)
	ctx.SetAudioCtx(0)

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		log.Error().Err(err).Int("samples", len(samples)).Msg("whisper: process failed")
		return "", fmt.Errorf("process audio: %w", err)
	}

	var segments []string
	for {
		seg, err := ctx.NextSegment()
		if err != nil {
			if err == io.EOF {
				break
			}
			log.Warn().Err(err).Msg("whisper: error reading segment")
			break
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			segments = append(segments, text)
		}
	}

	full := strings.TrimSpace(strings.Join(segments, " "))
	log.Debug().
		Str("full", full).
		Int("segments", len(segments)).
		Int("samples", len(samples)).
		Msg("whisper: transcription complete")
	return full, nil
}
