// Package maps renders static map images around a coordinate.
package maps

import (
	"context"
	"fmt"

	"github.com/salesday/backend/internal/models"
)

const (
	StyleMain      = "main"
	StyleDark      = "dark"
	StyleSatellite = "satellite"

	MinZoom = 0
	MaxZoom = 20

	DefaultZoom   = 15
	DefaultWidth  = 800
	DefaultHeight = 600

	// Largest image edge accepted from callers. The placeholder allocates
	// width*height*4 bytes, so this also caps per-request memory.
	MaxWidth  = 2048
	MaxHeight = 2048
)

var Styles = []string{StyleMain, StyleDark, StyleSatellite}

type Params struct {
	Zoom   int
	Style  string
	Width  int
	Height int
}

// Validate checks zoom, style and image size. Zero width/height fall back to
// defaults.
func (p Params) Validate() error {
	if p.Zoom < MinZoom || p.Zoom > MaxZoom {
		return fmt.Errorf("zoom %d outside %d-%d", p.Zoom, MinZoom, MaxZoom)
	}
	if !IsStyle(p.Style) {
		return fmt.Errorf("unknown map style %q", p.Style)
	}
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("negative image size %dx%d", p.Width, p.Height)
	}
	if p.Width > MaxWidth || p.Height > MaxHeight {
		return fmt.Errorf("image size %dx%d exceeds %dx%d", p.Width, p.Height, MaxWidth, MaxHeight)
	}
	return nil
}

func (p Params) WithDefaults() Params {
	if p.Style == "" {
		p.Style = StyleMain
	}
	if p.Width == 0 {
		p.Width = DefaultWidth
	}
	if p.Height == 0 {
		p.Height = DefaultHeight
	}
	return p
}

func IsStyle(s string) bool {
	for _, v := range Styles {
		if s == v {
			return true
		}
	}
	return false
}

type Image struct {
	Data        []byte
	ContentType string
}

type Renderer interface {
	RenderStaticMap(ctx context.Context, center models.Coordinates, p Params) (Image, error)
}
