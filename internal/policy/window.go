package policy

import (
	"fmt"
	"time"
)

// Window is the unit of a policy's rolling issuance window.
type Window string

const (
	WindowHourly Window = "hourly"
	WindowDaily  Window = "daily"
)

func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case WindowHourly, WindowDaily:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
}

func (w Window) Duration() time.Duration {
	if w == WindowDaily {
		return 24 * time.Hour
	}
	return time.Hour
}
