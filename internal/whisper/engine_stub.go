//go:build !whisper_cpp

package whisper

// Default stub (no cgo) so the project builds without whisper_cpp tag.
type stubEngine struct{}

func NewEngine(modelPath string) (Engine, error) { return &stubEngine{}, nil }
func (e *stubEngine) Close() error               { return nil }
func (e *stubEngine) Process(samples []float32) (string, error) {
	return "", nil
}
func (e *stubEngine) SetLanguage(lang string) {}
