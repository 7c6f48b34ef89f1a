package audio

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// CaptureStats receives capture-loop counters. Implementations must be
// goroutine-safe. A nil CaptureStats is allowed.
type CaptureStats interface {
	ChunkCaptured()
	ReadFault()
}

// Worker owns the device stream for the lifetime of one recording. It runs
// on its own goroutine, appending fixed-size chunks to the session until
// Stop is signaled. The stop flag is polled between reads, so Stop blocks
// for at most one chunk-read duration plus shutdown.
type Worker struct {
	host    Host
	session *Session
	stats   CaptureStats
	log     zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu  sync.Mutex
	err error
}

// StartCapture spawns the capture goroutine. Stream-open failures (no input
// device, device busy) are fatal: the worker terminates without entering the
// read loop and the error is reported from Stop / Err.
func StartCapture(host Host, session *Session, stats CaptureStats, logger zerolog.Logger) *Worker {
	w := &Worker{
		host:    host,
		session: session,
		stats:   stats,
		log:     logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Stop signals the worker and blocks until its goroutine has terminated.
// It returns the fatal error, if any. Safe to call more than once.
func (w *Worker) Stop() error {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
	return w.Err()
}

// Done is closed when the worker goroutine has terminated.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Err returns the fatal error that terminated the worker, or nil.
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Worker) setErr(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

func (w *Worker) run() {
	defer close(w.done)

	dev, err := PickInputDevice(w.host)
	if err != nil {
		w.log.Error().Err(err).Msg("capture: no usable input device")
		w.setErr(err)
		return
	}
	w.log.Info().Int("device", dev.Index).Str("name", dev.Name).Msg("capture: input device selected")

	format := w.session.Format()
	stream, err := w.host.OpenInputStream(dev.Index, format)
	if err != nil {
		w.log.Error().Err(err).Msg("capture: failed to open stream")
		w.setErr(fmt.Errorf("open input stream: %w", err))
		return
	}
	// Deterministic release: stop, then close. A failed stop must not
	// prevent the close. The handle never escapes this goroutine, so it is
	// unreachable once run returns.
	defer func() {
		if err := stream.Stop(); err != nil {
			w.log.Warn().Err(err).Msg("capture: stream stop failed")
		}
		if err := stream.Close(); err != nil {
			w.log.Warn().Err(err).Msg("capture: stream close failed")
		}
	}()

	if err := stream.Start(); err != nil {
		w.log.Error().Err(err).Msg("capture: failed to start stream")
		w.setErr(fmt.Errorf("start input stream: %w", err))
		return
	}
	w.log.Info().
		Int("sample_rate", format.SampleRate).
		Int("channels", format.Channels).
		Int("chunk_size", format.ChunkSize).
		Msg("capture: stream opened")

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		chunk, err := stream.Read()
		if err != nil {
			// A single bad read does not mean the stream is dead.
			w.log.Warn().Err(err).Msg("capture: read fault, continuing")
			if w.stats != nil {
				w.stats.ReadFault()
			}
			continue
		}
		w.session.Append(EncodePCM16LE(chunk))
		if w.stats != nil {
			w.stats.ChunkCaptured()
		}
	}
}
