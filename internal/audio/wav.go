package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVInfo is the header summary used for format pre-checks.
type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// WriteWAVFile writes little-endian PCM16 bytes as a canonical WAV container:
// fixed header (channels, 16-bit sample width, frame rate from the capture
// format) followed by the frames in their original order.
func WriteWAVFile(path string, pcm []byte, f Format) error {
	samples, err := DecodePCM16LE(pcm)
	if err != nil {
		return fmt.Errorf("encode wav %s: %w", path, err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav %s: %w", path, err)
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	enc := wav.NewEncoder(out, f.SampleRate, 8*SampleWidth, f.Channels, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		Data:           data,
		SourceBitDepth: 8 * SampleWidth,
	}
	if err := enc.Write(buf); err != nil {
		out.Close()
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalize wav %s: %w", path, err)
	}
	return out.Close()
}

// ReadWAVInfo inspects a WAV header without decoding the audio data.
func ReadWAVInfo(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return WAVInfo{}, fmt.Errorf("%s: invalid wav file", path)
	}
	return WAVInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}, nil
}

// ReadWAVPCM16 decodes a WAV file back to little-endian PCM16 bytes plus its
// header info. Round-trip counterpart of WriteWAVFile.
func ReadWAVPCM16(path string) ([]byte, WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WAVInfo{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, WAVInfo{}, fmt.Errorf("%s: invalid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return nil, WAVInfo{}, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if buf == nil {
		return nil, WAVInfo{}, errors.New("empty wav buffer")
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	info := WAVInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	return EncodePCM16LE(samples), info, nil
}

// ReadWAVFloat32 decodes a WAV file into normalized float32 samples, the
// feed format of the local speech engine.
func ReadWAVFloat32(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: invalid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return nil, 0, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if buf == nil {
		return nil, 0, errors.New("empty wav buffer")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	max := float32(int(1) << (bitDepth - 1))
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v) / max
	}
	sr := int(dec.SampleRate)
	if sr == 0 && buf.Format != nil {
		sr = buf.Format.SampleRate
	}
	return out, sr, nil
}
