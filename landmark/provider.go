// Package landmark defines the facial landmark model consumed by the face filters:
// a per-face point Set, the Provider producing them for a video frame and the
// Scheme mapping the facial features the filters need to indices of a Set.
package landmark

import "image"

// Set is the ordered sequence of landmark points of a single face.
// The meaning of each index is defined by the Scheme the provider follows.
type Set []image.Point

// Provider returns zero or more landmark sets for a frame.
// A provider must return the same sets for the same frame and model.
type Provider interface {
	Detect(frame *image.NRGBA) ([]Set, error)
}

// ProviderFunc is an adapter allowing the use of ordinary functions as landmark providers.
type ProviderFunc func(frame *image.NRGBA) ([]Set, error)

// Detect calls f(frame).
func (f ProviderFunc) Detect(frame *image.NRGBA) ([]Set, error) {
	return f(frame)
}

// Bounds returns the smallest rectangle containing every point of the set.
func (s Set) Bounds() image.Rectangle {
	if len(s) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: s[0], Max: s[0].Add(image.Pt(1, 1))}
	for _, p := range s[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}
