package artifact

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestNormalizeImage_Downscales(t *testing.T) {
	out, size, err := NormalizeImage(encodeJPEG(t, solidImage(400, 200)), 100)
	require.NoError(t, err)
	require.Equal(t, image.Pt(100, 50), size)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 100, decoded.Bounds().Dx())
	require.Equal(t, 50, decoded.Bounds().Dy())
}

func TestNormalizeImage_KeepsSmallImages(t *testing.T) {
	_, size, err := NormalizeImage(encodeJPEG(t, solidImage(80, 60)), 100)
	require.NoError(t, err)
	require.Equal(t, image.Pt(80, 60), size)

	_, size, err = NormalizeImage(encodeJPEG(t, solidImage(300, 60)), 0)
	require.NoError(t, err)
	require.Equal(t, image.Pt(300, 60), size)
}

func TestNormalizeImage_Invalid(t *testing.T) {
	_, _, err := NormalizeImage([]byte("not an image"), 100)
	require.ErrorIs(t, err, ErrInvalidImage)
}

func TestStore_WriteImageAndAudio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "generated")
	s := NewStore(dir, 64, nil)

	path, err := s.WriteImage("p1_scene_0.png", encodeJPEG(t, solidImage(128, 128)))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "p1_scene_0.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Width)

	audioPath, err := s.WriteAudio("p1_scene_0.mp3", []byte("ID3"))
	require.NoError(t, err)
	data, err := os.ReadFile(audioPath)
	require.NoError(t, err)
	require.Equal(t, []byte("ID3"), data)

	_, err = os.Stat(audioPath + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestStore_RejectsPathNames(t *testing.T) {
	s := NewStore(t.TempDir(), 0, nil)
	_, err := s.WriteAudio("../escape.mp3", []byte("x"))
	require.Error(t, err)
}
