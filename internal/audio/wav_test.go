package audio

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f := Format{SampleRate: 44100, Channels: 1, ChunkSize: 4}

	samples := []int16{0, 100, -100, 32767, -32768, 7}
	pcm := EncodePCM16LE(samples)

	if err := WriteWAVFile(path, pcm, f); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}

	got, info, err := ReadWAVPCM16(path)
	if err != nil {
		t.Fatalf("ReadWAVPCM16: %v", err)
	}
	if info.SampleRate != 44100 || info.Channels != 1 || info.BitDepth != 16 {
		t.Errorf("header = %+v, want 44100/1/16", info)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("payload changed across round trip:\n got %v\nwant %v", got, pcm)
	}
}

func TestReadWAVInfoInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := writeFile(path, []byte("definitely not a wav")); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadWAVInfo(path); err == nil {
		t.Error("ReadWAVInfo accepted a non-WAV file")
	}
}

func TestReadWAVFloat32Normalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "norm.wav")
	f := Format{SampleRate: 16000, Channels: 1, ChunkSize: 4}

	samples := []int16{16384, -16384, 0}
	if err := WriteWAVFile(path, EncodePCM16LE(samples), f); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}

	out, sr, err := ReadWAVFloat32(path)
	if err != nil {
		t.Fatalf("ReadWAVFloat32: %v", err)
	}
	if sr != 16000 {
		t.Errorf("sample rate = %d, want 16000", sr)
	}
	if len(out) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(out), len(samples))
	}
	if out[0] < 0.49 || out[0] > 0.51 {
		t.Errorf("out[0] = %f, want ~0.5", out[0])
	}
	if out[1] > -0.49 || out[1] < -0.51 {
		t.Errorf("out[1] = %f, want ~-0.5", out[1])
	}
	if out[2] != 0 {
		t.Errorf("out[2] = %f, want 0", out[2])
	}
}
