package render

import (
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

// Template names under the assets directory.
const (
	TemplateLifesteal = "template.png"
	TemplateDuels     = "duel_template.png"
)

// Assets loads fonts and background templates from a directory once and
// shares them between renders. Loaded images are never written to.
type Assets struct {
	dir   string
	fonts *Fonts

	mu        sync.Mutex
	templates map[string]image.Image
}

// NewAssets returns the assets found under dir. Nothing is read until first use.
func NewAssets(dir string) *Assets {
	return &Assets{
		dir:       dir,
		fonts:     NewFonts(filepath.Join(dir, "fonts", "MinecraftRegular.otf")),
		templates: make(map[string]image.Image),
	}
}

// Template returns the named background, or nil when it is missing. A
// missing template is remembered so the disk is only checked once.
func (a *Assets) Template(name string) image.Image {
	a.mu.Lock()
	defer a.mu.Unlock()

	if img, ok := a.templates[name]; ok {
		return img
	}

	img, err := imaging.Open(filepath.Join(a.dir, name))
	if err != nil {
		logger.Warn("Card template unavailable", "template", name, "error", err)
		img = nil
	}
	a.templates[name] = img
	return img
}

// Preload reads the font and every template up front.
func (a *Assets) Preload() {
	a.fonts.load()
	a.Template(TemplateLifesteal)
	a.Template(TemplateDuels)
}
