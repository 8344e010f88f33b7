package imaging

import (
	"fmt"
	"image/color"

	"storefront-imagery/internal/catalog"
)

// CategoryInfo summarizes what a category renders with.
type CategoryInfo struct {
	Name       string   `json:"name"`
	Background string   `json:"background"`
	Colors     []string `json:"colors"`
	Patterns   []string `json:"patterns"`
	Styles     []string `json:"styles"`
	Default    bool     `json:"default,omitempty"`
}

// Describe lists every supported category in catalog order.
func Describe() []CategoryInfo {
	cats := catalog.Categories()
	infos := make([]CategoryInfo, 0, len(cats))
	for _, c := range cats {
		tmpl := catalog.For(c)
		infos = append(infos, CategoryInfo{
			Name:       c.String(),
			Background: hexColor(Background(c)),
			Colors:     tmpl.ColorNames(),
			Patterns:   tmpl.Patterns,
			Styles:     tmpl.Styles,
			Default:    c == catalog.DefaultCategory,
		})
	}
	return infos
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
