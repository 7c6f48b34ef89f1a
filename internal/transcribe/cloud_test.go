package transcribe

import (
	"context"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"auto", ""},
		{"en", "en"},
		{"zh-CN", "zh"},
		{"pt_BR", "pt"},
		{"uk", "uk"},
	}
	for _, tt := range tests {
		if got := normalizeLanguage(tt.in); got != tt.want {
			t.Errorf("normalizeLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyCloudError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error // sentinel the result must match, nil means no sentinel
	}{
		{
			name: "bad request is a format fault",
			err:  &openai.APIError{HTTPStatusCode: http.StatusBadRequest},
			want: ErrFormat,
		},
		{
			name: "unsupported media type is a format fault",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnsupportedMediaType},
			want: ErrFormat,
		},
		{
			name: "unauthorized is a service fault",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized},
			want: ErrNetwork,
		},
		{
			name: "rate limited is a service fault",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
			want: ErrNetwork,
		},
		{
			name: "server error stays plain",
			err:  &openai.APIError{HTTPStatusCode: http.StatusInternalServerError},
			want: nil,
		},
		{
			name: "transport error is a service fault",
			err:  &openai.RequestError{HTTPStatusCode: http.StatusBadGateway, Err: errors.New("eof")},
			want: ErrNetwork,
		},
		{
			name: "deadline is a service fault",
			err:  context.DeadlineExceeded,
			want: ErrNetwork,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyCloudError(tt.err)
			if got == nil {
				t.Fatal("classifyCloudError returned nil")
			}
			if tt.want != nil {
				if !errors.Is(got, tt.want) {
					t.Errorf("classifyCloudError(%v) = %v, want sentinel %v", tt.err, got, tt.want)
				}
				return
			}
			for _, sentinel := range []error{ErrFormat, ErrNetwork, ErrNoSpeech} {
				if errors.Is(got, sentinel) {
					t.Errorf("classifyCloudError(%v) matched sentinel %v, want plain error", tt.err, sentinel)
				}
			}
		})
	}
}
