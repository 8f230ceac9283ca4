package facefilter

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeNRGBAImage(rect image.Rectangle, colors []color.Color) *image.NRGBA {
	img := image.NewNRGBA(rect)
	fillDrawImage(img, colors)
	return img
}

func makeYCbCrImage(rect image.Rectangle, colors []color.Color, sr image.YCbCrSubsampleRatio) *image.YCbCr {
	img := image.NewYCbCr(rect, sr)
	j := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			iy := img.YOffset(x, y)
			ic := img.COffset(x, y)
			c := color.NRGBAModel.Convert(colors[j]).(color.NRGBA)
			img.Y[iy], img.Cb[ic], img.Cr[ic] = color.RGBToYCbCr(c.R, c.G, c.B)
			j++
		}
	}
	return img
}

func fillDrawImage(img *image.NRGBA, colors []color.Color) {
	colorsNRGBA := make([]color.NRGBA, len(colors))
	for i, c := range colors {
		nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
		nrgba.A = uint8(i % 256)
		colorsNRGBA[i] = nrgba
	}
	rect := img.Bounds()
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, colorsNRGBA[i])
			i++
		}
	}
}

func TestImage_ImgToNRGBA(t *testing.T) {
	rect := image.Rect(-1, -1, 15, 15)
	colors := palette.Plan9

	testCases := []struct {
		name string
		img  image.Image
	}{
		{
			name: "NRGBA",
			img:  makeNRGBAImage(rect, colors),
		},
		{
			name: "YCbCr-444",
			img:  makeYCbCrImage(rect, colors, image.YCbCrSubsampleRatio444),
		},
		{
			name: "Gray",
			img:  image.NewGray(rect),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.img.Bounds()
			dst := imgToNRGBA(tc.img)

			assert.Equal(t, image.Rect(0, 0, r.Dx(), r.Dy()), dst.Bounds())
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					want := color.NRGBAModel.Convert(tc.img.At(x, y)).(color.NRGBA)
					got := dst.NRGBAAt(x-r.Min.X, y-r.Min.Y)
					assert.InDelta(t, want.R, got.R, 1)
					assert.InDelta(t, want.G, got.G, 1)
					assert.InDelta(t, want.B, got.B, 1)
					assert.Equal(t, want.A, got.A)
				}
			}
		})
	}
}

func TestImage_RGBAToNRGBAShouldUnpremultiply(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	i := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := color.NRGBAModel.Convert(palette.Plan9[i]).(color.NRGBA)
			c.A = uint8(i)
			src.Set(x, y, c)
			i++
		}
	}
	// A sub image exercises the offset rows as well.
	img := src.SubImage(image.Rect(2, 3, 16, 16)).(*image.RGBA)
	dst := imgToNRGBA(img)

	assert.Equal(t, image.Rect(0, 0, 14, 13), dst.Bounds())
	for y := 3; y < 16; y++ {
		for x := 2; x < 16; x++ {
			want := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			assert.Equal(t, want, dst.NRGBAAt(x-2, y-3), "pixel at (%d, %d)", x, y)
		}
	}
}

func TestImage_ImgToFrameShouldBeOpaque(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 40})

	frame := ToFrame(src)
	for i := 3; i < len(frame.Pix); i += 4 {
		assert.Equal(t, uint8(0xff), frame.Pix[i])
	}
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 0xff}, frame.NRGBAAt(1, 1))

	// The source image is left intact.
	assert.Equal(t, uint8(40), src.NRGBAAt(1, 1).A)
}

func TestImage_ShouldEncodeByExtension(t *testing.T) {
	img := solid(8, 6, red)
	dir := t.TempDir()

	for _, name := range []string{"out.png", "out.jpg", "out.bmp"} {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, encodeImg(f, img))
		require.NoError(t, f.Close())

		dec, err := decodeImg(f.Name())
		require.NoError(t, err, name)
		assert.Equal(t, image.Rect(0, 0, 8, 6), dec.Bounds())
	}

	f, err := os.Create(filepath.Join(dir, "out.tiff"))
	require.NoError(t, err)
	defer f.Close()
	assert.Error(t, encodeImg(f, img))

	// Non file writers are receiving jpeg encoded images.
	var buf bytes.Buffer
	require.NoError(t, encodeImg(&buf, img))
	_, err = jpeg.Decode(&buf)
	assert.NoError(t, err)
}

func TestImage_DecodeShouldRejectNonImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an image"), 0644))

	_, err := decodeImg(path)
	assert.Error(t, err)
}
