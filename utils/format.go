package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MessageType is a custom type used as a placeholder for various message types.
type MessageType int

// The message types used across the CLI application.
const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
)

// Colors used across the CLI application.
const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	ErrorColor   = "\x1b[31m"
)

// Banner is the prefix shown in front of the status messages.
const Banner = "⚡ FACEFILTER"

var messageColors = map[MessageType]string{
	DefaultMessage: DefaultColor,
	StatusMessage:  StatusColor,
	SuccessMessage: SuccessColor,
	ErrorMessage:   ErrorColor,
}

// DecorateText wraps the message in the color of its type.
// Unknown message types are returned undecorated.
func DecorateText(s string, msgType MessageType) string {
	c, ok := messageColors[msgType]
	if !ok {
		return s
	}
	return c + s + DefaultColor
}

// StatusLine composes a status line prefixed with the colored banner.
func StatusLine(msg string, msgType MessageType) string {
	return fmt.Sprintf("%s %s",
		DecorateText(Banner, StatusMessage),
		DecorateText(msg, msgType),
	)
}

// FormatTime formats the processing time as days, hours, minutes and seconds,
// omitting the leading units which are zero.
func FormatTime(d time.Duration) string {
	units := []struct {
		n      int64
		suffix string
	}{
		{int64(d / (24 * time.Hour)), "d"},
		{int64(d/time.Hour) % 24, "h"},
		{int64(d/time.Minute) % 60, "m"},
	}

	var parts []string
	for _, u := range units {
		if u.n > 0 || len(parts) > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", u.n, u.suffix))
		}
	}
	parts = append(parts, fmt.Sprintf("%.2fs", math.Mod(d.Seconds(), 60)))

	return strings.Join(parts, " ")
}
