package facefilter

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/esimov/facefilter/landmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticProvider(faces ...landmark.Set) landmark.Provider {
	return landmark.ProviderFunc(func(*image.NRGBA) ([]landmark.Set, error) {
		return faces, nil
	})
}

func TestAsset_ShouldCacheTheDecodedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset.png")
	writePNG(t, path, solid(6, 3, red))

	store := NewAssetStore()
	first, err := store.Get(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 3), first.Bounds())

	// The cached asset is served even after the file has been removed.
	require.NoError(t, os.Remove(path))
	second, err := store.Get(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := store.Get(path)
			assert.NoError(t, err)
			assert.Same(t, first, img)
		}()
	}
	wg.Wait()
}

func TestAsset_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRGBA(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, ErrAssetLoad)

	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("\x89PNG\r\n\x1a\nbroken"), 0644))
	_, err = LoadRGBA(corrupt)
	assert.ErrorIs(t, err, ErrAssetLoad)

	// Failures are not cached.
	store := NewAssetStore()
	path := filepath.Join(dir, "late.png")
	_, err = store.Get(path)
	assert.ErrorIs(t, err, ErrAssetLoad)

	writePNG(t, path, solid(2, 2, red))
	_, err = store.Get(path)
	assert.NoError(t, err)
}

func TestProcessor_NoneModeShouldNotDetect(t *testing.T) {
	p := NewProcessor(landmark.ProviderFunc(func(*image.NRGBA) ([]landmark.Set, error) {
		t.Fatal("the detector should not be called")
		return nil, nil
	}), testScheme)

	frame := solid(10, 10, gray)
	res, err := p.Apply(frame, ModeNone)
	require.NoError(t, err)
	assert.Same(t, frame, res)
}

func TestProcessor_ApplyShouldDispatchToTheFilter(t *testing.T) {
	assetPath := filepath.Join(t.TempDir(), "sunglasses.png")
	writePNG(t, assetPath, solid(10, 4, red))

	face := landmark.Set{{10, 20}, {20, 20}, {15, 30}, {10, 35}, {20, 35}}
	p := NewProcessor(staticProvider(face), testScheme)
	p.SunglassesPath = assetPath

	frame, err := p.Apply(solid(40, 40, gray), ModeSunglasses)
	require.NoError(t, err)
	assert.Equal(t, red, frame.NRGBAAt(15, 20))

	frame, err = p.Apply(checkerboard(40, 40), ModeBlur)
	require.NoError(t, err)
	assert.NotEqual(t, checkerboard(40, 40).NRGBAAt(15, 27), frame.NRGBAAt(15, 27))

	_, err = p.Apply(solid(40, 40, gray), Mode(42))
	assert.Error(t, err)
}

func TestProcessor_ApplyShouldReportDetectionErrors(t *testing.T) {
	errDetect := errors.New("model not loaded")
	p := NewProcessor(landmark.ProviderFunc(func(*image.NRGBA) ([]landmark.Set, error) {
		return nil, errDetect
	}), testScheme)

	frame := solid(10, 10, gray)
	before := clonePix(frame)

	res, err := p.Apply(frame, ModeBlur)
	assert.ErrorIs(t, err, errDetect)
	assert.Equal(t, before, res.Pix)
}

func TestProcessor_Process(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, checkerboard(32, 24)))

	p := NewProcessor(staticProvider(), testScheme)
	p.Mode = ModeBlur

	var out bytes.Buffer
	require.NoError(t, p.Process(&in, &out))

	img, format, err := image.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())

	assert.Error(t, p.Process(bytes.NewReader([]byte("not an image")), &out))
}

func TestProcessor_ExecuteShouldProcessDirectories(t *testing.T) {
	srcDir := filepath.Join(t.TempDir(), "src")
	dstDir := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "nested"), 0755))

	writePNG(t, filepath.Join(srcDir, "first.png"), solid(12, 12, gray))
	writePNG(t, filepath.Join(srcDir, "nested", "second.png"), solid(8, 8, red))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "readme.txt"), []byte("skip me"), 0644))

	p := NewProcessor(staticProvider(), testScheme)
	p.Mode = ModeMustache

	err := p.Execute(&Ops{Src: srcDir, Dst: dstDir, PipeName: "-", Workers: 2})
	require.NoError(t, err)

	for name, size := range map[string]int{"first.png": 12, "second.png": 8} {
		img, err := decodeImg(filepath.Join(dstDir, name))
		require.NoError(t, err, name)
		assert.Equal(t, image.Rect(0, 0, size, size), img.Bounds())
	}
	_, err = os.Stat(filepath.Join(dstDir, "readme.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessor_ExecuteSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writePNG(t, src, solid(16, 16, gray))

	p := NewProcessor(staticProvider(), testScheme)
	p.Mode = ModeLandmarks

	dst := filepath.Join(dir, "out.png")
	require.NoError(t, p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-"}))

	img, err := decodeImg(dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())

	assert.Error(t, p.Execute(&Ops{Src: src, Dst: filepath.Join(dir, "out.tiff"), PipeName: "-"}))
	assert.Error(t, p.Execute(&Ops{Src: filepath.Join(dir, "missing.png"), Dst: dst, PipeName: "-"}))
}

func TestExec_OutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "a.jpg"), outputPath("out", filepath.Join("in", "a.jpg")))
	assert.Equal(t, filepath.Join("out", "b.png"), outputPath("out", filepath.Join("in", "b.webp")))
	assert.Equal(t, filepath.Join("out", "c.png"), outputPath("out", "c.gif"))
}
