package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

// halves returns a 20x10 image, red on the left and blue on the right
func halves() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				img.Set(x, y, red)
			} else {
				img.Set(x, y, blue)
			}
		}
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "001.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestCrop(t *testing.T) {
	img := halves()

	cropped := Crop(img, image.Rect(10, 0, 20, 10))
	assert.Equal(t, 10, cropped.Bounds().Dx())
	r, g, b, _ := cropped.At(cropped.Bounds().Min.X, cropped.Bounds().Min.Y).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0xffff}, [3]uint32{r, g, b})

	// out of bounds crops are ignored
	assert.Equal(t, img.Bounds(), Crop(img, image.Rect(15, 0, 40, 10)).Bounds())
	assert.Equal(t, img.Bounds(), Crop(img, image.Rectangle{}).Bounds())
}

func TestToANSI(t *testing.T) {
	art := ToANSI(halves(), 4, 3)

	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Equal(t, "▀▀▀▀", StripANSI(line))
		assert.True(t, strings.HasPrefix(line, "\x1b[38;2;"))
	}
}

func TestToANSINonPositiveSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.Empty(t, ToANSI(img, -1, 2))
	assert.Empty(t, ToANSI(img, 2, 0))
	assert.Empty(t, ToANSI(img, 0, 0))

	path := writePNG(t, halves())
	_, err := Cached(t.TempDir(), path, image.Rectangle{}, false, -1, 2)
	assert.ErrorContains(t, err, "invalid art size -1x2")
	_, err = Cached("", path, image.Rectangle{}, false, 4, 0)
	assert.ErrorContains(t, err, "invalid art size 4x0")
}

func TestCached(t *testing.T) {
	path := writePNG(t, halves())
	cacheDir := t.TempDir()

	art, err := Cached(cacheDir, path, image.Rect(0, 0, 10, 10), true, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "▀▀▀▀\n▀▀▀▀\n", StripANSI(art))

	entries, err := os.ReadDir(filepath.Join(cacheDir, "ansi_cache"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".ansi"))

	again, err := Cached(cacheDir, path, image.Rect(0, 0, 10, 10), true, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, art, again)

	_, err = Cached("", filepath.Join(t.TempDir(), "missing.png"), image.Rectangle{}, false, 4, 2)
	assert.ErrorContains(t, err, "failed to open image")
}

func TestLoadRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "001.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to decode image")
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{""}, WrapText("   ", 20))
	assert.Equal(t,
		[]string{"It stores electricity", "in its cheeks."},
		WrapText("It stores electricity in its cheeks.", 21))
}

func TestSideBySide(t *testing.T) {
	out := SideBySide("ab\nc\n", []string{"Card: X", "ID: 1", "extra"}, 2)
	assert.Equal(t, "\n  ab  Card: X\n  c   ID: 1\n      extra\n\n", out)
}
