package facefilter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/facefilter/utils"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeImg decodes an image file to type image.Image
func decodeImg(src string) (image.Image, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("could not open the image file: %w", err)
	}
	defer file.Close()

	ctype, err := utils.DetectContentType(file.Name())
	if err != nil {
		return nil, err
	}

	// The webp content type is reported as generic binary data by the standard sniffer.
	if !strings.Contains(ctype, "image") && !strings.EqualFold(filepath.Ext(src), ".webp") {
		return nil, fmt.Errorf("%s is not an image file", filepath.Base(src))
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode the image file: %w", err)
	}

	return img, nil
}

// encodeImg encodes an image to a destination of type io.Writer.
// The format is selected by the file extension; pipes are encoded as jpeg.
func encodeImg(w io.Writer, img *image.NRGBA) error {
	switch w := w.(type) {
	case *os.File:
		switch strings.ToLower(filepath.Ext(w.Name())) {
		case "", ".jpg", ".jpeg":
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
		case ".png":
			return png.Encode(w, img)
		case ".bmp":
			return bmp.Encode(w, img)
		default:
			return errors.New("unsupported image format")
		}
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	}
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := srcBounds.Dx() * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.RGBA:
		// Video frames are decoded as RGBA: undo the alpha premultiplication row by row.
		rowSize := srcBounds.Dx() * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			unpremultiplyRow(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}

// unpremultiplyRow converts a row of alpha premultiplied pixels to non premultiplied ones.
func unpremultiplyRow(dst, src []uint8) {
	for i := 0; i < len(src); i += 4 {
		switch a := src[i+3]; a {
		case 0xff:
			copy(dst[i:i+4], src[i:i+4])
		case 0:
			dst[i+0], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
		default:
			for c := 0; c < 3; c++ {
				dst[i+c] = uint8((uint32(src[i+c]) * 0xffff / uint32(a)) >> 8)
			}
			dst[i+3] = a
		}
	}
}

// ToFrame converts an image to a video frame: a *image.NRGBA with min-point
// at (0, 0) which is fully opaque. The source image is never modified.
func ToFrame(img image.Image) *image.NRGBA {
	frame := imgToNRGBA(img)
	if frame == img {
		frame = imaging.Clone(frame)
	}
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 0xff
	}
	return frame
}
