// Package recorder holds the lifecycle controller tying capture, waveform
// display, persistence, and transcription together behind a single toggle.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voicescribe/voicescribe/internal/audio"
	"github.com/voicescribe/voicescribe/internal/persist"
	"github.com/voicescribe/voicescribe/internal/transcribe"
	"github.com/voicescribe/voicescribe/internal/waveform"
)

// State is the controller lifecycle state.
type State int

const (
	StateReady State = iota
	StateRecording
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Transcriber dispatches one transcription request and delivers exactly one
// result on the returned channel.
type Transcriber interface {
	Transcribe(req transcribe.Request) <-chan transcribe.Result
}

// Stats receives controller lifecycle counters. A nil Stats is allowed.
type Stats interface {
	RecordingStarted()
	RecordingStopped()
	RecordingSaved()
	SaveFailed()
}

// Config carries the per-session parameters the controller hands to its
// collaborators.
type Config struct {
	Format           audio.Format
	WaveformInterval time.Duration
	Language         string
	Model            string
}

// Status is a snapshot for the UI layer.
type Status struct {
	State        string `json:"state"`
	Transcribing bool   `json:"transcribing"`
	Frames       int    `json:"frames"`
}

// Controller is the recording lifecycle state machine:
//
//	Ready → Recording → Stopping → (Transcribing) → Ready
//
// At most one session is active; Start while Recording and Stop while Ready
// are defensive no-ops. Stop joins the capture worker and persists
// synchronously on the calling goroutine, then dispatches transcription
// asynchronously and returns. The transcribing flag stays up until the
// worker's one-shot result has been forwarded to Results.
type Controller struct {
	host        audio.Host
	saver       *persist.Saver
	transcriber Transcriber
	display     waveform.Display
	captureStat audio.CaptureStats
	stats       Stats
	cfg         Config
	log         zerolog.Logger

	mu           sync.Mutex
	state        State
	session      *audio.Session
	capture      *audio.Worker
	sampler      *waveform.Sampler
	transcribing bool

	results chan transcribe.Result
}

func New(host audio.Host, saver *persist.Saver, transcriber Transcriber, display waveform.Display,
	cfg Config, captureStats audio.CaptureStats, stats Stats, logger zerolog.Logger) *Controller {
	return &Controller{
		host:        host,
		saver:       saver,
		transcriber: transcriber,
		display:     display,
		captureStat: captureStats,
		stats:       stats,
		cfg:         cfg,
		log:         logger,
		session:     audio.NewSession(cfg.Format),
		// Structurally one transcription is in flight at a time, so a
		// single buffered slot never blocks the worker goroutine.
		results: make(chan transcribe.Result, 1),
	}
}

// Results delivers one Result per completed transcription. Read it from the
// UI loop.
func (c *Controller) Results() <-chan transcribe.Result { return c.results }

// Toggle starts a recording when idle and stops it when recording.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	recording := c.state == StateRecording
	c.mu.Unlock()
	if recording {
		return c.Stop()
	}
	return c.Start()
}

// Start begins a new capture session: the previous session's frames are
// discarded, the capture worker is spawned, and the waveform tick starts.
// Calling Start while already Recording is ignored.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		c.log.Warn().Stringer("state", c.state).Msg("controller: start ignored, session already active")
		return nil
	}
	if c.transcribing {
		// A previous session's transcription still owns the temp file
		// set; starting now would race it over the container path.
		c.log.Warn().Msg("controller: start refused, transcription in flight")
		return nil
	}

	c.session.Reset(c.cfg.Format)
	c.session.SetActive(true)
	c.capture = audio.StartCapture(c.host, c.session, c.captureStat, c.log)
	c.sampler = waveform.NewSampler(c.session, c.display, c.cfg.WaveformInterval, c.log)
	c.sampler.Start()
	c.state = StateRecording
	if c.stats != nil {
		c.stats.RecordingStarted()
	}
	c.log.Info().
		Int("sample_rate", c.cfg.Format.SampleRate).
		Int("channels", c.cfg.Format.Channels).
		Msg("controller: recording started")
	return nil
}

// Stop ends the active session. It halts the waveform tick, signals the
// capture worker and blocks until it has joined, persists the session
// synchronously, and dispatches transcription in the background before
// returning. A capture failure or a failed container write returns the
// controller to Ready with no transcription attempted; a failed MP3
// transcode still dispatches transcription (the container it reads exists)
// while surfacing the error. Stop on a Ready controller is a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording {
		return nil
	}
	c.state = StateStopping
	defer func() { c.state = StateReady }()

	c.sampler.Stop()
	c.sampler = nil
	c.session.SetActive(false)

	// Join before persisting: no concurrent append while serializing.
	captureErr := c.capture.Stop()
	c.capture = nil
	if c.stats != nil {
		c.stats.RecordingStopped()
	}
	if captureErr != nil {
		return fmt.Errorf("capture failed: %w", captureErr)
	}

	rec, err := c.saver.Save(context.Background(), c.session)
	var saveErr error
	if err != nil {
		var tErr *persist.TranscodeError
		if !errors.As(err, &tErr) {
			if c.stats != nil {
				c.stats.SaveFailed()
			}
			return fmt.Errorf("save recording: %w", err)
		}
		// The MP3 step failed but the container exists, and transcription
		// only reads the container. Dispatch anyway so the transcript is
		// not lost and the worker's cleanup takes ownership of the WAV;
		// the transcode failure is still surfaced to the caller.
		if c.stats != nil {
			c.stats.SaveFailed()
		}
		c.log.Error().Err(err).Msg("controller: transcode failed, transcribing container anyway")
		saveErr = fmt.Errorf("save recording: %w", err)
	} else {
		if c.stats != nil {
			c.stats.RecordingSaved()
		}
		c.log.Info().Str("output", rec.CompressedPath).Msg("controller: recording saved")
	}

	req := transcribe.Request{
		ID:         uuid.NewString(),
		SourcePath: rec.ContainerPath,
		Model:      c.cfg.Model,
		Language:   c.cfg.Language,
	}
	c.transcribing = true
	resCh := c.transcriber.Transcribe(req)
	go func() {
		r := <-resCh
		c.mu.Lock()
		c.transcribing = false
		c.mu.Unlock()
		c.results <- r
	}()
	c.log.Info().Str("request_id", req.ID).Msg("controller: transcription dispatched")
	return saveErr
}

// Transcribing reports whether a dispatched transcription has not yet
// delivered its result. The UI pins its busy presentation on this.
func (c *Controller) Transcribing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcribing
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns a snapshot for the UI layer.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:        c.state.String(),
		Transcribing: c.transcribing,
		Frames:       c.session.FrameCount(),
	}
}
