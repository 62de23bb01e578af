// Package preview renders card pictures as ANSI terminal art.
package preview

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// Default art size in terminal cells
const (
	DefaultWidth  = 40
	DefaultHeight = 32
)

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Load decodes a picture file
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Crop returns the part of img inside rect. The image is returned unchanged
// when rect does not fit inside its bounds.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Add(img.Bounds().Min)
	if rect.Empty() || !rect.In(img.Bounds()) {
		return img
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}
	return img
}

// ToANSI converts an image to ANSI art of width x height cells. A size
// below one cell yields no art.
func ToANSI(img image.Image, width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}

	// Resize image to desired dimensions (doubled for half-block characters)
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			c1 := colorAt(resized, x, y)
			c2 := colorAt(resized, x+1, y)
			c3 := colorAt(resized, x, y+1)
			c4 := colorAt(resized, x+1, y+1)

			col1, _ := colorful.MakeColor(c1)
			col2, _ := colorful.MakeColor(c2)
			col3, _ := colorful.MakeColor(c3)
			col4, _ := colorful.MakeColor(c4)

			// Top pixels as foreground, bottom pixels as background
			fg := averageColor(col1, col2)
			bg := averageColor(col3, col4)

			buffer.WriteString(halfBlock(fg, bg))
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}

// colorAt returns the color at a coordinate relative to the image origin
func colorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	x += bounds.Min.X
	y += bounds.Min.Y
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255}
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

func halfBlock(fg, bg colorful.Color) string {
	r1, g1, b1 := fg.Clamped().RGB255()
	r2, g2, b2 := bg.Clamped().RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀\x1b[0m", r1, g1, b1, r2, g2, b2)
}

// Cached returns the ANSI art for a picture and crop, generating it into
// cacheDir on first use. An empty cacheDir disables caching.
func Cached(cacheDir, picturePath string, rect image.Rectangle, cropped bool, width, height int) (string, error) {
	if width < 1 || height < 1 {
		return "", fmt.Errorf("invalid art size %dx%d", width, height)
	}

	key := fmt.Sprintf("%s|%v|%t|%dx%d", picturePath, rect, cropped, width, height)
	var cachePath string
	if cacheDir != "" {
		cachePath = filepath.Join(cacheDir, "ansi_cache", fmt.Sprintf("%x.ansi", md5.Sum([]byte(key))))
		if data, err := os.ReadFile(cachePath); err == nil {
			if info, err := os.Stat(picturePath); err == nil {
				if cacheInfo, err := os.Stat(cachePath); err == nil && !cacheInfo.ModTime().Before(info.ModTime()) {
					return string(data), nil
				}
			}
		}
	}

	img, err := Load(picturePath)
	if err != nil {
		return "", err
	}
	if cropped {
		img = Crop(img, rect)
	}
	art := ToANSI(img, width, height)

	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
			return "", fmt.Errorf("failed to create ANSI cache directory: %w", err)
		}
		if err := os.WriteFile(cachePath, []byte(art), 0644); err != nil {
			return "", fmt.Errorf("failed to write ANSI art to file: %w", err)
		}
	}
	return art, nil
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// WrapText wraps text to a specified width
func WrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var result []string
	var currentLine string
	for _, word := range words {
		if len(currentLine) == 0 {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			result = append(result, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		result = append(result, currentLine)
	}
	return result
}

// SideBySide prints art on the left and info lines on the right
func SideBySide(art string, info []string, spacing int) string {
	artLines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	maxArtWidth := 0
	for _, line := range artLines {
		if w := len([]rune(StripANSI(line))); w > maxArtWidth {
			maxArtWidth = w
		}
	}
	infoStartCol := maxArtWidth + spacing

	var b strings.Builder
	b.WriteString("\n")
	for i := 0; i < max(len(artLines), len(info)); i++ {
		b.WriteString("  ")
		if i < len(artLines) {
			b.WriteString(artLines[i])
			b.WriteString(strings.Repeat(" ", infoStartCol-len([]rune(StripANSI(artLines[i])))))
		} else {
			b.WriteString(strings.Repeat(" ", infoStartCol))
		}
		if i < len(info) {
			b.WriteString(info[i])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
