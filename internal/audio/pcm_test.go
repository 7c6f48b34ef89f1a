package audio

import (
	"os"
	"testing"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func TestPCM16RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 256, -256}
	got, err := DecodePCM16LE(EncodePCM16LE(samples))
	if err != nil {
		t.Fatalf("DecodePCM16LE: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestDecodePCM16LEOddLength(t *testing.T) {
	if _, err := DecodePCM16LE([]byte{1, 2, 3}); err == nil {
		t.Error("DecodePCM16LE accepted odd-length input")
	}
}

func TestPCM16ToFloat32(t *testing.T) {
	out := PCM16ToFloat32([]int16{-32768, 0, 16384})
	if out[0] != -1 {
		t.Errorf("out[0] = %f, want -1", out[0])
	}
	if out[1] != 0 {
		t.Errorf("out[1] = %f, want 0", out[1])
	}
	if out[2] != 0.5 {
		t.Errorf("out[2] = %f, want 0.5", out[2])
	}
}
