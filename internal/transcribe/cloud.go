package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// CloudBackend recognizes speech through the OpenAI audio-transcriptions
// endpoint. It tries the recording as-is first; the worker handles the
// reformat-and-retry when the service rejects the container format.
type CloudBackend struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewCloudBackend(apiKey, model string, timeout time.Duration) *CloudBackend {
	if model == "" {
		model = openai.Whisper1
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &CloudBackend{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

func (b *CloudBackend) Name() string                 { return "cloud" }
func (b *CloudBackend) RequiresCanonicalInput() bool { return false }

func (b *CloudBackend) Recognize(ctx context.Context, wavPath, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    b.model,
		FilePath: wavPath,
		Language: normalizeLanguage(language),
	})
	if err != nil {
		return "", classifyCloudError(err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// normalizeLanguage reduces a BCP-47 hint like "zh-CN" to the ISO-639-1 code
// the API expects. "auto" and empty mean autodetect.
func normalizeLanguage(lang string) string {
	if lang == "" || lang == "auto" {
		return ""
	}
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		return lang[:i]
	}
	return lang
}

// classifyCloudError maps service failures onto the package sentinels:
// decode faults become ErrFormat (worker retries once after reformatting),
// transport/auth/quota failures become ErrNetwork (never retried), anything
// else stays a plain backend error.
func classifyCloudError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			return fmt.Errorf("%w: %v", ErrFormat, err)
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		return err
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return err
}
