package landmark

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/esimov/facefilter/utils"
	"gopkg.in/yaml.v3"
)

// Role names a facial feature used as anchor by the filters.
type Role string

const (
	LeftEyeCorner    Role = "left_eye_corner"
	RightEyeCorner   Role = "right_eye_corner"
	NoseTip          Role = "nose_tip"
	LeftMouthCorner  Role = "left_mouth_corner"
	RightMouthCorner Role = "right_mouth_corner"
)

// Roles lists every role a scheme has to map.
var Roles = []Role{LeftEyeCorner, RightEyeCorner, NoseTip, LeftMouthCorner, RightMouthCorner}

// Scheme maps the anchor roles to the indices of a landmark Set.
// Left and right are meant in image space: the left eye corner is the one
// with the smaller x coordinate on an unmirrored frame.
type Scheme struct {
	Name    string       `yaml:"name"`
	Size    int          `yaml:"size"`
	Indices map[Role]int `yaml:"indices"`
}

// MediaPipe is the 468 point face mesh scheme.
var MediaPipe = Scheme{
	Name: "mediapipe",
	Size: 468,
	Indices: map[Role]int{
		LeftEyeCorner:    33,
		RightEyeCorner:   263,
		NoseTip:          1,
		LeftMouthCorner:  61,
		RightMouthCorner: 291,
	},
}

// Pigo is the scheme of the sets returned by the PigoDetector.
//
//	0-1    pupils
//	2-11   eye cascades (lp46, lp44, lp42, lp38, lp312), each as left/right pair
//	12-16  nose and mouth cascades (lp93, lp84, lp82, lp81, lp84 mirrored)
//	17-20  face box corners, clockwise from the top left
var Pigo = Scheme{
	Name: "pigo",
	Size: PigoPoints,
	Indices: map[Role]int{
		LeftEyeCorner:    8,
		RightEyeCorner:   9,
		NoseTip:          12,
		LeftMouthCorner:  13,
		RightMouthCorner: 16,
	},
}

// Validate checks that every role is mapped to an index inside the scheme.
func (s Scheme) Validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("scheme %q: invalid size %d", s.Name, s.Size)
	}
	for _, role := range Roles {
		idx, ok := s.Indices[role]
		if !ok {
			return fmt.Errorf("scheme %q: missing index for %s", s.Name, role)
		}
		if idx < 0 || idx >= s.Size {
			return fmt.Errorf("scheme %q: index %d of %s out of range [0, %d)", s.Name, idx, role, s.Size)
		}
	}
	for role := range s.Indices {
		if !utils.Contains(Roles, role) {
			return fmt.Errorf("scheme %q: unknown role %q", s.Name, role)
		}
	}
	return nil
}

// Point returns the landmark of the set mapped to role.
// The second value reports false when the set does not contain it.
func (s Scheme) Point(set Set, role Role) (image.Point, bool) {
	idx, ok := s.Indices[role]
	if !ok || idx < 0 || idx >= len(set) {
		return image.Point{}, false
	}
	return set[idx], true
}

// Points resolves several roles at once. It fails if any of them is missing.
func (s Scheme) Points(set Set, roles ...Role) ([]image.Point, bool) {
	pts := make([]image.Point, 0, len(roles))
	for _, role := range roles {
		p, ok := s.Point(set, role)
		if !ok {
			return nil, false
		}
		pts = append(pts, p)
	}
	return pts, true
}

// LoadScheme reads and validates a YAML encoded scheme.
func LoadScheme(path string) (Scheme, error) {
	var s Scheme

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("could not read the landmark scheme: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("could not decode the landmark scheme %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// SchemeByName returns one of the built-in schemes, or loads it
// from a YAML file in case name is not a known scheme name.
func SchemeByName(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case MediaPipe.Name:
		return MediaPipe, nil
	case Pigo.Name:
		return Pigo, nil
	}
	return LoadScheme(name)
}
