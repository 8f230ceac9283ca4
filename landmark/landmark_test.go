package landmark

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	pigo "github.com/esimov/pigo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheme_BuiltinsShouldBeValid(t *testing.T) {
	assert.NoError(t, MediaPipe.Validate())
	assert.NoError(t, Pigo.Validate())

	assert.Equal(t, 33, MediaPipe.Indices[LeftEyeCorner])
	assert.Equal(t, 263, MediaPipe.Indices[RightEyeCorner])
	assert.Equal(t, 1, MediaPipe.Indices[NoseTip])
	assert.Equal(t, 61, MediaPipe.Indices[LeftMouthCorner])
	assert.Equal(t, 291, MediaPipe.Indices[RightMouthCorner])
}

func TestScheme_ShouldRejectInvalidMappings(t *testing.T) {
	cases := map[string]Scheme{
		"zero size": {Name: "a", Size: 0, Indices: MediaPipe.Indices},
		"missing role": {Name: "b", Size: 10, Indices: map[Role]int{
			LeftEyeCorner: 1, RightEyeCorner: 2, NoseTip: 3, LeftMouthCorner: 4,
		}},
		"out of range": {Name: "c", Size: 5, Indices: map[Role]int{
			LeftEyeCorner: 1, RightEyeCorner: 2, NoseTip: 3, LeftMouthCorner: 4, RightMouthCorner: 5,
		}},
		"unknown role": {Name: "d", Size: 10, Indices: map[Role]int{
			LeftEyeCorner: 1, RightEyeCorner: 2, NoseTip: 3, LeftMouthCorner: 4, RightMouthCorner: 5, "chin": 6,
		}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Validate())
		})
	}
}

func TestScheme_Point(t *testing.T) {
	set := make(Set, PigoPoints)
	set[Pigo.Indices[NoseTip]] = image.Pt(40, 50)

	p, ok := Pigo.Point(set, NoseTip)
	assert.True(t, ok)
	assert.Equal(t, image.Pt(40, 50), p)

	// A set shorter than the scheme requires is reported as incomplete.
	_, ok = MediaPipe.Point(set, RightEyeCorner)
	assert.False(t, ok)

	_, ok = Pigo.Points(set[:10], LeftEyeCorner, NoseTip)
	assert.False(t, ok)

	pts, ok := Pigo.Points(set, LeftEyeCorner, NoseTip)
	assert.True(t, ok)
	assert.Len(t, pts, 2)
}

func TestScheme_ShouldLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.yaml")
	data := []byte(`name: custom
size: 68
indices:
  left_eye_corner: 36
  right_eye_corner: 45
  nose_tip: 30
  left_mouth_corner: 48
  right_mouth_corner: 54
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	s, err := LoadScheme(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", s.Name)
	assert.Equal(t, 68, s.Size)
	assert.Equal(t, 54, s.Indices[RightMouthCorner])

	s, err = SchemeByName(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", s.Name)

	require.NoError(t, os.WriteFile(path, []byte("name: broken\nsize: 3\n"), 0644))
	_, err = LoadScheme(path)
	assert.Error(t, err)

	_, err = LoadScheme(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScheme_ByName(t *testing.T) {
	s, err := SchemeByName("MediaPipe")
	require.NoError(t, err)
	assert.Equal(t, MediaPipe.Size, s.Size)

	s, err = SchemeByName("pigo")
	require.NoError(t, err)
	assert.Equal(t, PigoPoints, s.Size)
}

func TestSet_Bounds(t *testing.T) {
	assert.Equal(t, image.Rectangle{}, Set{}.Bounds())

	set := Set{{10, 20}, {30, 5}, {15, 25}}
	assert.Equal(t, image.Rect(10, 5, 31, 26), set.Bounds())
}

func TestProvider_Func(t *testing.T) {
	want := []Set{{{1, 2}}}
	var p Provider = ProviderFunc(func(frame *image.NRGBA) ([]Set, error) {
		return want, nil
	})
	got, err := p.Detect(image.NewNRGBA(image.Rect(0, 0, 2, 2)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPigo_Grayscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 100, A: 255})

	gray := grayscale(img)
	assert.Equal(t, []uint8{0, 29}, gray)

	// Sub images are converted relative to their own bounds.
	sub := img.SubImage(image.Rect(1, 0, 2, 1)).(*image.NRGBA)
	assert.Equal(t, []uint8{29}, grayscale(sub))
}

func TestPigo_FaceBox(t *testing.T) {
	box := faceBox(pigo.Detection{Row: 50, Col: 60, Scale: 40})
	assert.Equal(t, [4]image.Point{{40, 30}, {80, 30}, {80, 70}, {40, 70}}, box)

	img := pigo.ImageParams{Rows: 60, Cols: 70}
	assert.Equal(t, image.Pt(69, 0), clampPoint(image.Pt(80, -4), img))
}

func TestPigo_ShouldFailWithoutCascades(t *testing.T) {
	cfg := DefaultPigoConfig()
	cfg.FaceFinder = filepath.Join(t.TempDir(), "facefinder")

	_, err := NewPigoDetector(cfg)
	assert.Error(t, err)

	cfg.ScaleFactor = 1.0
	_, err = NewPigoDetector(cfg)
	assert.ErrorContains(t, err, "invalid detection parameters")
}

func TestPigo_ConfigWithDir(t *testing.T) {
	cfg := DefaultPigoConfig().WithDir("models")

	assert.Equal(t, filepath.Join("models", "facefinder"), cfg.FaceFinder)
	assert.Equal(t, filepath.Join("models", "puploc"), cfg.Puploc)
	assert.Equal(t, filepath.Join("models", "lps"), cfg.FlpDir)
	assert.Equal(t, DefaultPigoConfig().MinSize, cfg.MinSize)
}
