package whisper

// RequiredRate is the only sample rate the model accepts. Input must be
// resampled to 16 kHz mono 16-bit before it reaches the engine.
const RequiredRate = 16000

// Engine is a small interface for whisper transcription.
// Implementations may be a no-op (stub) or backed by whisper.cpp (build tag: whisper_cpp).
type Engine interface {
	// Process runs transcription over the provided PCM32F samples and
	// returns the joined segment text.
	Process(samples []float32) (string, error)
	// SetLanguage configures the language for transcription. Use "auto" for auto-detection.
	SetLanguage(lang string)
	Close() error
}
