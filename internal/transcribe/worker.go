package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicescribe/voicescribe/internal/audio"
	"github.com/voicescribe/voicescribe/internal/media"
	"github.com/voicescribe/voicescribe/internal/whisper"
)

// Stats receives transcription outcome counters. A nil Stats is allowed.
type Stats interface {
	TranscriptionFinished(kind string, seconds float64)
}

// Worker drives one transcription request at a time through the lifecycle
//
//	Preparing → (Reformatting →) Recognizing → Done | Failed
//
// Both terminal states trigger the cleanup side effect exactly once: the
// reformatted intermediate (if one was produced) and the source container
// are removed. The container is retained through recognition because both
// the backend and the reformat step read it.
type Worker struct {
	backend          Backend
	trans            media.Transcoder
	intermediatePath string
	stats            Stats
	log              zerolog.Logger
}

func NewWorker(backend Backend, trans media.Transcoder, intermediatePath string, stats Stats, logger zerolog.Logger) *Worker {
	return &Worker{
		backend:          backend,
		trans:            trans,
		intermediatePath: intermediatePath,
		stats:            stats,
		log:              logger,
	}
}

// Transcribe runs the request on its own goroutine and delivers exactly one
// Result on the returned one-shot channel. There is no mid-flight
// cancellation; a dispatched request always reaches a terminal state.
func (w *Worker) Transcribe(req Request) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		start := time.Now()
		r := w.run(req)
		if w.stats != nil {
			w.stats.TranscriptionFinished(r.Kind.String(), time.Since(start).Seconds())
		}
		ch <- r
	}()
	return ch
}

func (w *Worker) run(req Request) Result {
	ctx := context.Background()
	log := w.log.With().Str("request_id", req.ID).Str("backend", w.backend.Name()).Logger()

	// Preparing. A missing source is terminal immediately; no files exist
	// for this request, so there is nothing to clean either.
	if _, err := os.Stat(req.SourcePath); err != nil {
		log.Error().Str("path", req.SourcePath).Msg("transcribe: source recording missing")
		return failure(req.ID, MissingSource, fmt.Errorf("source recording missing: %w", err))
	}

	madeIntermediate := false
	defer func() {
		w.cleanup(req.SourcePath, madeIntermediate, log)
	}()

	if req.Model != "" {
		if ms, ok := w.backend.(ModelSelector); ok {
			if err := ms.SetModel(req.Model); err != nil {
				return failure(req.ID, BackendError, fmt.Errorf("select model: %w", err))
			}
		}
	}

	path := req.SourcePath
	if w.backend.RequiresCanonicalInput() {
		// Reformatting, unconditional: the local engine has a hard
		// input-format requirement.
		if err := w.reformat(ctx, req.SourcePath, log); err != nil {
			return failure(req.ID, UnsupportedFormat, err)
		}
		madeIntermediate = true
		path = w.intermediatePath

		// Fail fast on a bad intermediate instead of forwarding it to
		// the model.
		info, err := audio.ReadWAVInfo(path)
		if err != nil {
			return failure(req.ID, UnsupportedFormat, fmt.Errorf("inspect intermediate: %w", err))
		}
		if info.SampleRate != whisper.RequiredRate {
			return failure(req.ID, UnsupportedFormat,
				fmt.Errorf("intermediate is %d Hz, backend requires %d Hz", info.SampleRate, whisper.RequiredRate))
		}
	}

	log.Info().Str("path", path).Str("language", req.Language).Msg("transcribe: recognizing")
	text, err := w.backend.Recognize(ctx, path, req.Language)
	if err != nil && errors.Is(err, ErrFormat) && !w.backend.RequiresCanonicalInput() && !madeIntermediate {
		// The service rejected the container format. Reformat to the
		// canonical rate and retry exactly once; a second failure of any
		// kind is terminal.
		log.Warn().Err(err).Msg("transcribe: format rejected, reformatting and retrying")
		if rerr := w.reformat(ctx, req.SourcePath, log); rerr != nil {
			return failure(req.ID, UnsupportedFormat, rerr)
		}
		madeIntermediate = true
		text, err = w.backend.Recognize(ctx, w.intermediatePath, req.Language)
	}
	if err != nil {
		return w.classify(req, err, log)
	}

	if text == "" {
		log.Info().Msg("transcribe: backend produced no content")
		return empty(req.ID)
	}
	log.Info().Int("chars", len(text)).Msg("transcribe: success")
	return success(req.ID, text)
}

func (w *Worker) reformat(ctx context.Context, sourcePath string, log zerolog.Logger) error {
	log.Info().
		Str("from", sourcePath).
		Str("to", w.intermediatePath).
		Int("rate", whisper.RequiredRate).
		Msg("transcribe: reformatting to canonical rate")
	if err := w.trans.ResampleWAV(ctx, sourcePath, w.intermediatePath, whisper.RequiredRate, 1); err != nil {
		return fmt.Errorf("reformat recording: %w", err)
	}
	return nil
}

func (w *Worker) classify(req Request, err error, log zerolog.Logger) Result {
	switch {
	case errors.Is(err, ErrNoSpeech):
		log.Info().Msg("transcribe: no speech recognized")
		return empty(req.ID)
	case errors.Is(err, ErrNetwork):
		log.Error().Err(err).Msg("transcribe: service failure")
		return failure(req.ID, NetworkError, err)
	case errors.Is(err, ErrFormat):
		log.Error().Err(err).Msg("transcribe: unsupported format")
		return failure(req.ID, UnsupportedFormat, err)
	default:
		log.Error().Err(err).Msg("transcribe: backend failure")
		return failure(req.ID, BackendError, err)
	}
}

// cleanup removes the temp file set for one request. Best effort: a failed
// remove is logged, never surfaced.
func (w *Worker) cleanup(sourcePath string, madeIntermediate bool, log zerolog.Logger) {
	if madeIntermediate {
		if err := os.Remove(w.intermediatePath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", w.intermediatePath).Msg("transcribe: failed to remove intermediate")
		} else {
			log.Debug().Str("path", w.intermediatePath).Msg("transcribe: removed intermediate")
		}
	}
	if err := os.Remove(sourcePath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", sourcePath).Msg("transcribe: failed to remove container")
	} else {
		log.Debug().Str("path", sourcePath).Msg("transcribe: removed container")
	}
}
