package facefilter

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// ErrAssetLoad is returned when an overlay asset could not be loaded.
var ErrAssetLoad = errors.New("unable to load the overlay asset")

// LoadRGBA decodes the overlay asset found at path.
func LoadRGBA(path string) (*image.NRGBA, error) {
	src, err := decodeImg(path)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %v", ErrAssetLoad, path, err)
	}
	// The decoded image is owned by the caller, no need to clone it.
	return imgToNRGBA(src), nil
}

// AssetStore caches the decoded overlay assets. The cached images are
// shared between the callers, so they must be treated as read only.
// The failed loads are not cached, they are retried on every call.
type AssetStore struct {
	mu     sync.RWMutex
	assets map[string]*image.NRGBA
}

// NewAssetStore initializes an empty asset cache.
func NewAssetStore() *AssetStore {
	return &AssetStore{
		assets: make(map[string]*image.NRGBA),
	}
}

// Get returns the asset found at path, decoding it on the first access.
func (s *AssetStore) Get(path string) (*image.NRGBA, error) {
	s.mu.RLock()
	img, ok := s.assets[path]
	s.mu.RUnlock()
	if ok {
		return img, nil
	}

	img, err := LoadRGBA(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine might have loaded it in the meantime.
	if cached, ok := s.assets[path]; ok {
		return cached, nil
	}
	s.assets[path] = img

	return img, nil
}
