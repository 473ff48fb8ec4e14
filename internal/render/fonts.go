package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

// Font sizes used on the cards.
const (
	SizeTiny   = 20
	SizeSmall  = 26
	SizeMedium = 32
	SizeLarge  = 40
)

var fallbackFont = sync.OnceValue(func() *opentype.Font {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse bundled font: %v", err))
	}
	return f
})

// Fonts holds the parsed card font. The font file is read once; a missing or
// broken file falls back to the bundled Go regular font.
type Fonts struct {
	path string
	once sync.Once
	font *opentype.Font
}

// NewFonts returns a lazily loaded font set for the file at path.
func NewFonts(path string) *Fonts {
	return &Fonts{path: path}
}

func (f *Fonts) load() *opentype.Font {
	f.once.Do(func() {
		f.font = fallbackFont()
		if f.path == "" {
			return
		}
		parsed, err := parseFontFile(f.path)
		if err != nil {
			logger.Warn("Failed to load card font, using fallback", "path", f.path, "error", err)
			return
		}
		f.font = parsed
	})
	return f.font
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return parsed, nil
}

// faceCache hands out one face per size. Faces keep glyph buffers and must
// not be shared between goroutines, so every render owns its own cache.
type faceCache struct {
	fonts *Fonts
	faces map[float64]font.Face
}

func newFaceCache(fonts *Fonts) *faceCache {
	return &faceCache{fonts: fonts, faces: make(map[float64]font.Face, 4)}
}

func (c *faceCache) face(size float64) font.Face {
	if face, ok := c.faces[size]; ok {
		return face
	}
	opts := &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull}
	face, err := opentype.NewFace(c.fonts.load(), opts)
	if err != nil {
		logger.Warn("Failed to create font face, using fallback", "size", size, "error", err)
		face, err = opentype.NewFace(fallbackFont(), opts)
		if err != nil {
			panic(fmt.Sprintf("create bundled font face: %v", err))
		}
	}
	c.faces[size] = face
	return face
}

func (c *faceCache) close() {
	for _, face := range c.faces {
		_ = face.Close()
	}
}
