package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const meterWidth = 40

// consoleMeter renders the live input level as a one-line bar on each
// waveform tick, redrawn in place with a carriage return.
type consoleMeter struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleMeter(out io.Writer) *consoleMeter {
	return &consoleMeter{out: out}
}

// Update implements waveform.Display.
func (m *consoleMeter) Update(samples []int16) {
	if len(samples) == 0 {
		return
	}
	var peak int
	for _, v := range samples {
		a := int(v)
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	filled := peak * meterWidth / 32768
	if filled > meterWidth {
		filled = meterWidth
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, "\r[%s%s]", strings.Repeat("#", filled), strings.Repeat(" ", meterWidth-filled))
}

// Clear erases the meter line.
func (m *consoleMeter) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, "\r%s\r", strings.Repeat(" ", meterWidth+2))
}
