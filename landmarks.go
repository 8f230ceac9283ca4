package facefilter

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/esimov/facefilter/landmark"
	"golang.org/x/image/vector"
)

const (
	landmarkRadius = 2
	// kappa is the distance of the bezier control points approximating a quarter circle.
	kappa = 0.5522847
)

var landmarkColor = color.NRGBA{G: 0xff, A: 0xff}

// Landmarks draws a filled dot over every landmark point of the faces.
func (p *Processor) Landmarks(frame *image.NRGBA, faces []landmark.Set) *image.NRGBA {
	if len(faces) == 0 {
		return frame
	}
	bounds := frame.Bounds()
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	z.DrawOp = draw.Over

	for _, face := range faces {
		for _, pt := range face {
			pt = pt.Sub(bounds.Min)
			circle(z, float32(pt.X)+0.5, float32(pt.Y)+0.5, landmarkRadius)
		}
	}
	z.Draw(frame, bounds, image.NewUniform(landmarkColor), image.Point{})

	return frame
}

// circle adds a closed circular path to the rasterizer.
func circle(z *vector.Rasterizer, cx, cy, r float32) {
	k := r * kappa

	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}
