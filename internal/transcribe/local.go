package transcribe

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voicescribe/voicescribe/internal/audio"
	"github.com/voicescribe/voicescribe/internal/whisper"
)

// LocalBackend recognizes speech with a local whisper model. The engine has
// a hard 16 kHz mono input requirement, so it always demands canonical
// input; Recognize additionally verifies the header before the samples ever
// reach the model. Loaded engines are cached per model file so switching
// back to a previous model is free.
type LocalBackend struct {
	modelsDir string
	log       zerolog.Logger

	// newEngine is swappable in tests.
	newEngine func(modelPath string) (whisper.Engine, error)

	mu        sync.Mutex
	modelPath string
	engines   map[string]whisper.Engine
}

func NewLocalBackend(modelsDir, modelID string, logger zerolog.Logger) (*LocalBackend, error) {
	path, err := whisper.ResolveModel(modelsDir, modelID)
	if err != nil {
		return nil, err
	}
	return &LocalBackend{
		modelsDir: modelsDir,
		log:       logger,
		newEngine: whisper.NewEngine,
		modelPath: path,
		engines:   make(map[string]whisper.Engine),
	}, nil
}

func (b *LocalBackend) Name() string                 { return "local" }
func (b *LocalBackend) RequiresCanonicalInput() bool { return true }

// SetModel switches to another locally resolvable model identifier.
func (b *LocalBackend) SetModel(id string) error {
	path, err := whisper.ResolveModel(b.modelsDir, id)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.modelPath = path
	b.mu.Unlock()
	b.log.Info().Str("model", id).Str("path", path).Msg("local backend: model selected")
	return nil
}

func (b *LocalBackend) Recognize(ctx context.Context, wavPath, language string) (string, error) {
	info, err := audio.ReadWAVInfo(wavPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if info.SampleRate != whisper.RequiredRate {
		return "", fmt.Errorf("%w: input is %d Hz, model requires %d Hz",
			ErrFormat, info.SampleRate, whisper.RequiredRate)
	}

	samples, _, err := audio.ReadWAVFloat32(wavPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}

	engine, err := b.engine()
	if err != nil {
		return "", fmt.Errorf("load model: %w", err)
	}
	if language != "" && language != "auto" {
		engine.SetLanguage(language)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return engine.Process(samples)
}

// Close releases every cached engine.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var first error
	for path, e := range b.engines {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
		delete(b.engines, path)
	}
	return first
}

func (b *LocalBackend) engine() (whisper.Engine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.engines[b.modelPath]; ok {
		return e, nil
	}
	e, err := b.newEngine(b.modelPath)
	if err != nil {
		return nil, err
	}
	b.engines[b.modelPath] = e
	return e, nil
}
