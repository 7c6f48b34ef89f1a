package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voicescribe/voicescribe/internal/audio"
	"github.com/voicescribe/voicescribe/internal/whisper"
)

type fakeEngine struct {
	text     string
	language string
	closed   bool
	calls    int
}

func (e *fakeEngine) Process(samples []float32) (string, error) {
	e.calls++
	return e.text, nil
}

func (e *fakeEngine) SetLanguage(lang string) { e.language = lang }
func (e *fakeEngine) Close() error            { e.closed = true; return nil }

func modelsDir(t *testing.T, models ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, m := range models {
		if err := os.WriteFile(filepath.Join(dir, whisper.ModelFileName(m)), []byte("w"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeRateWAV(t *testing.T, dir string, rate int) string {
	t.Helper()
	path := filepath.Join(dir, "in.wav")
	pcm := audio.EncodePCM16LE([]int16{100, -100, 200, -200})
	if err := audio.WriteWAVFile(path, pcm, audio.Format{SampleRate: rate, Channels: 1, ChunkSize: 4}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewLocalBackendUnknownModel(t *testing.T) {
	dir := modelsDir(t, "small")
	if _, err := NewLocalBackend(dir, "large", zerolog.Nop()); err == nil {
		t.Error("NewLocalBackend resolved a missing model")
	}
}

func TestLocalBackendRecognize(t *testing.T) {
	dir := modelsDir(t, "small")
	b, err := NewLocalBackend(dir, "small", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	engine := &fakeEngine{text: "offline words"}
	b.newEngine = func(modelPath string) (whisper.Engine, error) { return engine, nil }

	path := writeRateWAV(t, t.TempDir(), whisper.RequiredRate)
	text, err := b.Recognize(context.Background(), path, "en")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "offline words" {
		t.Errorf("text = %q", text)
	}
	if engine.language != "en" {
		t.Errorf("engine language = %q, want en", engine.language)
	}
}

func TestLocalBackendRejectsWrongRate(t *testing.T) {
	dir := modelsDir(t, "small")
	b, err := NewLocalBackend(dir, "small", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	b.newEngine = func(modelPath string) (whisper.Engine, error) {
		t.Fatal("engine loaded for rejected input")
		return nil, nil
	}

	path := writeRateWAV(t, t.TempDir(), 44100)
	if _, err := b.Recognize(context.Background(), path, ""); !errors.Is(err, ErrFormat) {
		t.Fatalf("Recognize = %v, want ErrFormat", err)
	}
}

func TestLocalBackendCachesEngines(t *testing.T) {
	dir := modelsDir(t, "small")
	b, err := NewLocalBackend(dir, "small", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	loads := 0
	engine := &fakeEngine{text: "x"}
	b.newEngine = func(modelPath string) (whisper.Engine, error) {
		loads++
		return engine, nil
	}

	path := writeRateWAV(t, t.TempDir(), whisper.RequiredRate)
	for i := 0; i < 3; i++ {
		if _, err := b.Recognize(context.Background(), path, ""); err != nil {
			t.Fatalf("Recognize %d: %v", i, err)
		}
	}
	if loads != 1 {
		t.Errorf("engine loaded %d times, want 1", loads)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !engine.closed {
		t.Error("cached engine not closed")
	}
}

func TestLocalBackendSetModel(t *testing.T) {
	dir := modelsDir(t, "small", "tiny")
	b, err := NewLocalBackend(dir, "small", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	if err := b.SetModel("tiny"); err != nil {
		t.Fatalf("SetModel(tiny): %v", err)
	}
	if err := b.SetModel("large"); err == nil {
		t.Error("SetModel resolved a missing model")
	}
}
