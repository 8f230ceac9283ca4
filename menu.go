package facefilter

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// MenuLines holds the instructions shown over the live video.
var MenuLines = []string{
	"Press '0' for no filter",
	"Press '1' for facial landmark detection",
	"Press '2' for blur filter",
	"Press '3' for sunglasses filter",
	"Press '4' for mustache filter",
	"Press 'q' to exit",
}

// Menu draws the instructional text over the frames.
type Menu struct {
	Lines    []string
	Origin   image.Point // baseline of the first line
	LineStep int
	Color    color.Color

	face font.Face
}

// NewMenu initializes the menu with the Go regular font.
func NewMenu() (*Menu, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("error parsing the menu font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    13,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating the menu font face: %w", err)
	}

	return &Menu{
		Lines:    MenuLines,
		Origin:   image.Pt(10, 30),
		LineStep: 20,
		Color:    color.White,
		face:     face,
	}, nil
}

// Draw writes the menu lines over the frame.
func (m *Menu) Draw(frame *image.NRGBA) {
	d := &font.Drawer{
		Dst:  frame,
		Src:  image.NewUniform(m.Color),
		Face: m.face,
	}
	for i, line := range m.Lines {
		d.Dot = fixed.P(m.Origin.X, m.Origin.Y+i*m.LineStep)
		d.DrawString(line)
	}
}
