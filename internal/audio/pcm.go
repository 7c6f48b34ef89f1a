package audio

import "errors"

// EncodePCM16LE serializes samples as little-endian PCM16 bytes.
func EncodePCM16LE(samples []int16) []byte {
	out := make([]byte, len(samples)*SampleWidth)
	for i, v := range samples {
		out[2*i] = byte(v)
		out[2*i+1] = byte(uint16(v) >> 8)
	}
	return out
}

// DecodePCM16LE reinterprets little-endian PCM16 bytes as samples.
func DecodePCM16LE(b []byte) ([]int16, error) {
	if len(b)%SampleWidth != 0 {
		return nil, errors.New("pcm16 length must be even")
	}
	out := make([]int16, len(b)/SampleWidth)
	for i := range out {
		out[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return out, nil
}

// PCM16ToFloat32 normalizes PCM16 samples to float32 in [-1, 1], the input
// format the local speech engine expects.
func PCM16ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, v := range samples {
		out[i] = float32(v) / 32768.0
	}
	return out
}
