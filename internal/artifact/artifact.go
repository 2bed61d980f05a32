// Package artifact persists generated images and audio to the local
// filesystem.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned when image bytes cannot be decoded.
var ErrInvalidImage = errors.New("invalid image data")

// DefaultMaxWidth caps stored image width in pixels.
const DefaultMaxWidth = 1600

// Store writes artifacts under a single directory. Artifacts are never
// deleted by the store.
type Store struct {
	dir      string
	maxWidth int
	logger   *slog.Logger
}

// NewStore creates a store rooted at dir. A non-positive maxWidth disables
// downscaling.
func NewStore(dir string, maxWidth int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{dir: dir, maxWidth: maxWidth, logger: logger}
}

// Dir returns the directory artifacts are written to.
func (s *Store) Dir() string {
	return s.dir
}

// WriteImage normalizes data to PNG, downscaling it to the store's maximum
// width, and writes it as name. It returns the written path.
func (s *Store) WriteImage(name string, data []byte) (string, error) {
	out, size, err := NormalizeImage(data, s.maxWidth)
	if err != nil {
		return "", err
	}
	path, err := s.write(name, out)
	if err != nil {
		return "", err
	}
	s.logger.Debug("image stored", "path", path, "width", size.X, "height", size.Y, "bytes", len(out))
	return path, nil
}

// WriteAudio writes data unchanged as name and returns the written path.
func (s *Store) WriteAudio(name string, data []byte) (string, error) {
	path, err := s.write(name, data)
	if err != nil {
		return "", err
	}
	s.logger.Debug("audio stored", "path", path, "bytes", len(data))
	return path, nil
}

func (s *Store) write(name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	return path, nil
}

// NormalizeImage decodes data, scales it down to maxWidth when wider, and
// re-encodes it as PNG. It returns the encoded bytes and final size.
func NormalizeImage(data []byte, maxWidth int) ([]byte, image.Point, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxWidth, newH
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, image.Point{}, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), image.Pt(w, h), nil
}
