package facefilter

import (
	"fmt"
	"strings"
)

// Mode is the filter applied over the frames.
type Mode int

const (
	ModeNone Mode = iota
	ModeLandmarks
	ModeBlur
	ModeSunglasses
	ModeMustache
)

// ExitKey is the key terminating the live mode.
const ExitKey = 'q'

var modeNames = map[Mode]string{
	ModeNone:       "none",
	ModeLandmarks:  "landmarks",
	ModeBlur:       "blur",
	ModeSunglasses: "sunglasses",
	ModeMustache:   "mustache",
}

// Key returns the key selecting the mode.
func (m Mode) Key() int {
	return '0' + int(m)
}

// Next returns the mode selected by the key.
// The mode remains unchanged in case of an unrecognized key.
func (m Mode) Next(key int) Mode {
	if key >= '0' && key <= '0'+int(ModeMustache) {
		return Mode(key - '0')
	}
	return m
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the mode identified either by its name or by its key.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if s == name || (len(s) == 1 && int(s[0]) == m.Key()) {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("unknown filter %q", s)
}
