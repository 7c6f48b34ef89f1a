package audio

import "errors"

// ErrNoInputDevice is the fatal session error reported when the host has no
// device with input channels. There is no retry and no fallback probing.
var ErrNoInputDevice = errors.New("no audio input device found")

// DeviceInfo mirrors what the audio host reports for one device.
type DeviceInfo struct {
	Index             int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// InputStream is an open capture stream. Read blocks until one chunk of
// ChunkSize frames is available.
type InputStream interface {
	Start() error
	Read() ([]int16, error)
	Stop() error
	Close() error
}

// Host abstracts the audio device subsystem so the capture worker can be
// exercised without real hardware.
type Host interface {
	Devices() ([]DeviceInfo, error)
	OpenInputStream(deviceIndex int, f Format) (InputStream, error)
	Close() error
}

// PickInputDevice iterates host devices in index order and returns the first
// one with a positive input-channel count.
func PickInputDevice(h Host) (DeviceInfo, error) {
	devices, err := h.Devices()
	if err != nil {
		return DeviceInfo{}, err
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return DeviceInfo{}, ErrNoInputDevice
}
