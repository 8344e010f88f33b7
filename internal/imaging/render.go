package imaging

import (
	"fmt"
	"image"
	"image/color"

	"storefront-imagery/internal/catalog"
)

// CanvasSize is the edge length of the square working canvas.
const CanvasSize = 800

// textureDensity is the probability that a textured pass paints a pixel.
const textureDensity = 0.7

var (
	SareeBackground   = color.RGBA{R: 255, G: 248, B: 220, A: 255}
	LehengaBackground = color.RGBA{R: 255, G: 240, B: 245, A: 255}
	KurtiBackground   = color.RGBA{R: 245, G: 245, B: 245, A: 255}
	JewelryBackground = color.RGBA{R: 248, G: 248, B: 255, A: 255}

	BorderGold     = color.RGBA{R: 218, G: 165, B: 32, A: 255}
	EmbroideryGold = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	AccentGold     = color.RGBA{R: 212, G: 175, B: 55, A: 255}
	PendantRuby    = color.RGBA{R: 224, G: 17, B: 95, A: 255}
	StoneWhite     = color.RGBA{R: 255, G: 255, B: 240, A: 255}
)

// Saree geometry.
var (
	sareeBody      = image.Rect(150, 120, 650, 680)
	sareeTopBorder = image.Rect(150, 100, 650, 120)
	sareeBotBorder = image.Rect(150, 680, 650, 700)
)

const (
	embroideryLines = 20
	accentDots      = 300
)

// rasterizer paints the category passes that follow the background fill and
// returns the primary template color it used.
type rasterizer func(c *Canvas, tmpl catalog.Template, rng catalog.Rand) catalog.NamedColor

// rasterizerFor returns the passes for c and the category they belong to.
// Unknown and unlisted categories take the default category's path.
func rasterizerFor(c catalog.Category) (rasterizer, catalog.Category) {
	switch c {
	case catalog.Sarees:
		return rasterizeSaree, c
	case catalog.Lehengas:
		return rasterizeLehenga, c
	case catalog.Kurtis:
		return rasterizeKurti, c
	case catalog.Jewelry:
		return rasterizeJewelry, c
	default:
		return rasterizerFor(catalog.DefaultCategory)
	}
}

var backgrounds = map[catalog.Category]color.RGBA{
	catalog.Sarees:   SareeBackground,
	catalog.Lehengas: LehengaBackground,
	catalog.Kurtis:   KurtiBackground,
	catalog.Jewelry:  JewelryBackground,
}

// Background returns the flat background color of a category. Unknown
// categories use the default category's background.
func Background(c catalog.Category) color.RGBA {
	if bg, ok := backgrounds[c]; ok {
		return bg
	}
	return backgrounds[catalog.DefaultCategory]
}

// render draws the full placeholder for category onto a fresh canvas.
func render(category catalog.Category, tmpl catalog.Template, rng catalog.Rand) (*Canvas, catalog.NamedColor, error) {
	paint, category := rasterizerFor(category)
	return paintCanvas(category, paint, tmpl, rng)
}

// paintCanvas fills a new canvas with the background of category, then runs
// paint over it. A panic inside paint is reported as an error.
func paintCanvas(category catalog.Category, paint rasterizer, tmpl catalog.Template, rng catalog.Rand) (canvas *Canvas, primary catalog.NamedColor, err error) {
	canvas, err = NewCanvas(CanvasSize, CanvasSize)
	if err != nil {
		return nil, primary, err
	}

	defer func() {
		if r := recover(); r != nil {
			canvas = nil
			err = fmt.Errorf("rasterize %s: %v", category, r)
		}
	}()

	canvas.Fill(Background(category))
	primary = paint(canvas, tmpl, rng)
	return canvas, primary, nil
}

func rasterizeSaree(c *Canvas, tmpl catalog.Template, rng catalog.Rand) catalog.NamedColor {
	primary := tmpl.Pick(rng)
	c.FillRectTextured(sareeBody, primary.Color, textureDensity, rng)

	c.FillRect(sareeTopBorder, BorderGold)
	c.FillRect(sareeBotBorder, BorderGold)

	switch tmpl.Pattern(rng) {
	case "Zari Border", "Temple Border":
		c.FillRect(image.Rect(sareeBody.Min.X, 130, sareeBody.Max.X, 134), BorderGold)
		c.FillRect(image.Rect(sareeBody.Min.X, 666, sareeBody.Max.X, 670), BorderGold)
	case "Paisley", "Floral":
		// pallu: a denser band along the right edge of the drape
		c.FillRect(image.Rect(560, sareeBody.Min.Y, 600, sareeBody.Max.Y), primary.Color)
	}
	return primary
}

func rasterizeLehenga(c *Canvas, tmpl catalog.Template, rng catalog.Rand) catalog.NamedColor {
	primary := tmpl.Pick(rng)
	waist := image.Pt(400, 300)
	skirt := image.Rect(0, waist.Y, CanvasSize, CanvasSize)
	c.FillRadial(skirt, waist, 320, primary.Color, textureDensity, rng)

	blouse := tmpl.Pick(rng)
	c.FillRect(image.Rect(300, 160, 500, waist.Y), blouse.Color)

	for i := 0; i < embroideryLines; i++ {
		x0 := 150 + rng.Intn(500)
		y0 := waist.Y + 20 + rng.Intn(280)
		x1 := x0 + rng.Intn(61) - 30
		y1 := y0 + rng.Intn(61) - 30
		c.DrawLine(image.Pt(x0, y0), image.Pt(x1, y1), EmbroideryGold)
	}
	return primary
}

func rasterizeKurti(c *Canvas, tmpl catalog.Template, rng catalog.Rand) catalog.NamedColor {
	primary := tmpl.Pick(rng)
	c.FillRect(image.Rect(250, 180, 550, 720), primary.Color)

	trim := tmpl.Pick(rng)
	c.FillRect(image.Rect(170, 180, 250, 400), trim.Color)
	c.FillRect(image.Rect(550, 180, 630, 400), trim.Color)
	c.FillRect(image.Rect(360, 180, 440, 230), trim.Color)

	for i := 0; i < accentDots; i++ {
		c.Set(rng.Intn(CanvasSize), rng.Intn(CanvasSize), AccentGold)
	}
	return primary
}

func rasterizeJewelry(c *Canvas, tmpl catalog.Template, rng catalog.Rand) catalog.NamedColor {
	primary := tmpl.Pick(rng)
	center := image.Pt(400, 320)
	const radius, thickness = 200, 14
	c.FillRing(center, radius, thickness, primary.Color)

	c.FillRadial(c.Bounds(), image.Pt(400, 540), 40, PendantRuby, 1, nil)

	switch tmpl.Pattern(rng) {
	case "Kundan", "Polki":
		// stones set along the lower half of the necklace
		for i := 1; i < 6; i++ {
			stone := ringPoint(center, radius+thickness/2, i*30)
			c.FillRadial(c.Bounds(), stone, 8, StoneWhite, 1, nil)
		}
	}
	return primary
}
