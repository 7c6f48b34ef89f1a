package audio

import (
	"bytes"
	"testing"
)

func TestSessionAppendOrder(t *testing.T) {
	s := NewSession(Format{SampleRate: 44100, Channels: 1, ChunkSize: 4})

	chunks := [][]byte{
		{1, 0, 2, 0},
		{3, 0, 4, 0},
		{5, 0, 6, 0},
	}
	for _, c := range chunks {
		s.Append(c)
	}

	if got := s.FrameCount(); got != 3 {
		t.Fatalf("FrameCount = %d, want 3", got)
	}
	want := []byte{1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0}
	if got := s.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Bytes = %v, want %v", got, want)
	}
	if got := s.LastChunk(); !bytes.Equal(got, chunks[2]) {
		t.Errorf("LastChunk = %v, want %v", got, chunks[2])
	}
}

func TestSessionAppendCopiesChunk(t *testing.T) {
	s := NewSession(Format{SampleRate: 44100, Channels: 1, ChunkSize: 2})

	buf := []byte{1, 2, 3, 4}
	s.Append(buf)
	buf[0] = 99

	if got := s.LastChunk(); got[0] != 1 {
		t.Errorf("chunk shares storage with caller buffer: got[0] = %d, want 1", got[0])
	}
}

func TestSessionLastChunkEmpty(t *testing.T) {
	s := NewSession(Format{SampleRate: 44100, Channels: 1, ChunkSize: 2})
	if got := s.LastChunk(); got != nil {
		t.Errorf("LastChunk on empty session = %v, want nil", got)
	}
	if got := s.Bytes(); len(got) != 0 {
		t.Errorf("Bytes on empty session has %d bytes, want 0", len(got))
	}
}

func TestSessionResetDiscardsFrames(t *testing.T) {
	s := NewSession(Format{SampleRate: 44100, Channels: 1, ChunkSize: 2})
	s.Append([]byte{1, 2})
	s.SetActive(true)

	f := Format{SampleRate: 16000, Channels: 1, ChunkSize: 8}
	s.Reset(f)

	if got := s.FrameCount(); got != 0 {
		t.Errorf("FrameCount after Reset = %d, want 0", got)
	}
	if s.Active() {
		t.Error("session still active after Reset")
	}
	if got := s.Format(); got != f {
		t.Errorf("Format after Reset = %+v, want %+v", got, f)
	}
}
