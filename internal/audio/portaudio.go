package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioHost is the PortAudio-backed implementation of Host. It owns the
// library lifetime: NewPortAudioHost initializes PortAudio and Close
// terminates it.
type PortAudioHost struct{}

func NewPortAudioHost() (*PortAudioHost, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	return &PortAudioHost{}, nil
}

func (h *PortAudioHost) Devices() ([]DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	out := make([]DeviceInfo, 0, len(infos))
	for i, d := range infos {
		out = append(out, DeviceInfo{
			Index:             i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}
	return out, nil
}

func (h *PortAudioHost) OpenInputStream(deviceIndex int, f Format) (InputStream, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	if deviceIndex < 0 || deviceIndex >= len(infos) {
		return nil, fmt.Errorf("device index %d out of range", deviceIndex)
	}

	buf := make([]int16, f.ChunkSize*f.Channels)
	params := portaudio.HighLatencyParameters(infos[deviceIndex], nil)
	params.Input.Channels = f.Channels
	params.SampleRate = float64(f.SampleRate)
	params.FramesPerBuffer = f.ChunkSize

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	return &paStream{stream: stream, buf: buf}, nil
}

func (h *PortAudioHost) Close() error {
	return portaudio.Terminate()
}

type paStream struct {
	stream *portaudio.Stream
	buf    []int16
}

func (s *paStream) Start() error { return s.stream.Start() }

func (s *paStream) Read() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		return nil, err
	}
	out := make([]int16, len(s.buf))
	copy(out, s.buf)
	return out, nil
}

func (s *paStream) Stop() error  { return s.stream.Stop() }
func (s *paStream) Close() error { return s.stream.Close() }
