package maps

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	"github.com/salesday/backend/internal/models"
)

var (
	placeholderBackground = map[string]color.RGBA{
		StyleMain:      {R: 0xf2, G: 0xef, B: 0xe9, A: 0xff},
		StyleDark:      {R: 0x24, G: 0x28, B: 0x2e, A: 0xff},
		StyleSatellite: {R: 0x3b, G: 0x55, B: 0x3a, A: 0xff},
	}
	placeholderGrid = color.RGBA{R: 0x9a, G: 0x9a, B: 0x9a, A: 0xff}
	placeholderPin  = color.RGBA{R: 0xd9, G: 0x30, B: 0x25, A: 0xff}
)

// Placeholder draws a gridded PNG with a pin in the centre. It stands in for
// a map tile service in development and tests.
type Placeholder struct{}

func (Placeholder) RenderStaticMap(ctx context.Context, _ models.Coordinates, p Params) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return Image{}, err
	}

	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	bg := placeholderBackground[p.Style]
	// Finer grid at higher zoom.
	step := 160 >> (p.Zoom / 5)
	if step < 8 {
		step = 8
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if x%step == 0 || y%step == 0 {
				img.SetRGBA(x, y, placeholderGrid)
				continue
			}
			img.SetRGBA(x, y, bg)
		}
	}
	cx, cy := p.Width/2, p.Height/2
	for y := cy - 6; y <= cy+6; y++ {
		for x := cx - 6; x <= cx+6; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= 36 {
				img.SetRGBA(x, y, placeholderPin)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, err
	}
	return Image{Data: buf.Bytes(), ContentType: "image/png"}, nil
}
