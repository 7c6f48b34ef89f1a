package audio

import "sync"

// SampleWidth is the byte width of one sample. Capture is always signed
// 16-bit little-endian PCM.
const SampleWidth = 2

// Format describes the capture stream format.
type Format struct {
	SampleRate int
	Channels   int
	ChunkSize  int // frames per device read
}

// Session accumulates the PCM chunks of a single recording. It has exactly
// one writer (the capture worker, which only appends) and two readers: the
// waveform sampler reads the last appended chunk while recording, and
// persistence reads the full sequence after the worker has joined. Chunks
// are immutable once appended; concatenation order is capture order.
type Session struct {
	mu     sync.Mutex
	active bool
	frames [][]byte
	format Format
}

func NewSession(f Format) *Session {
	return &Session{format: f}
}

// Reset discards all frames from the previous recording and rearms the
// session with the given format. Called by the controller before a new
// capture worker is spawned, never concurrently with one.
func (s *Session) Reset(f Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
	s.format = f
	s.active = false
}

func (s *Session) SetActive(v bool) {
	s.mu.Lock()
	s.active = v
	s.mu.Unlock()
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) Format() Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// Append adds one captured chunk. The chunk is copied so the caller may
// reuse its read buffer.
func (s *Session) Append(chunk []byte) {
	c := make([]byte, len(chunk))
	copy(c, chunk)
	s.mu.Lock()
	s.frames = append(s.frames, c)
	s.mu.Unlock()
}

// LastChunk returns the most recently appended chunk, or nil if nothing has
// been captured yet. The returned slice must not be mutated.
func (s *Session) LastChunk() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// FrameCount returns the number of chunks appended so far.
func (s *Session) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Bytes concatenates all frames in capture order.
func (s *Session) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.frames {
		n += len(f)
	}
	out := make([]byte, 0, n)
	for _, f := range s.frames {
		out = append(out, f...)
	}
	return out
}
