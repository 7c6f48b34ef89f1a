// Package waveform periodically turns the most recent captured chunk into a
// display-ready sample slice. It only reads the session; it never blocks the
// capture worker.
package waveform

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/voicescribe/voicescribe/internal/audio"
)

// DefaultInterval is the wall-clock tick between display updates.
const DefaultInterval = 100 * time.Millisecond

// Display consumes waveform frames. Chunk length may differ between ticks
// (stream start/stop boundaries produce short chunks); consumers must resize
// accordingly.
type Display interface {
	Update(samples []int16)
}

// Sampler drives a Display from a fixed ticker while a session is active.
type Sampler struct {
	session  *audio.Session
	display  Display
	interval time.Duration
	log      zerolog.Logger

	stop chan struct{}
	done chan struct{}
}

func NewSampler(session *audio.Session, display Display, interval time.Duration, logger zerolog.Logger) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		session:  session,
		display:  display,
		interval: interval,
		log:      logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop.
func (s *Sampler) Start() {
	go s.run()
}

// Stop halts the ticker and waits for the loop to exit.
func (s *Sampler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sampler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Sampler) tick() {
	if !s.session.Active() {
		return
	}
	chunk := s.session.LastChunk()
	if len(chunk) == 0 {
		return
	}
	samples, err := audio.DecodePCM16LE(chunk)
	if err != nil {
		s.log.Warn().Err(err).Msg("waveform: bad chunk")
		return
	}
	s.display.Update(samples)
}
