package catalog

import "image/color"

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

var templates = map[Category]Template{
	Sarees: {
		Category: Sarees,
		Colors: []NamedColor{
			{"Royal Blue", rgb(65, 105, 225)},
			{"Maroon", rgb(128, 0, 0)},
			{"Emerald Green", rgb(0, 155, 119)},
			{"Golden Yellow", rgb(255, 193, 37)},
			{"Deep Pink", rgb(255, 20, 147)},
			{"Purple", rgb(128, 0, 128)},
		},
		Patterns: []string{"Paisley", "Floral", "Geometric", "Zari Border", "Temple Border"},
		Styles:   []string{"Banarasi", "Kanjeevaram", "Chiffon", "Georgette"},
	},
	Lehengas: {
		Category: Lehengas,
		Colors: []NamedColor{
			{"Red", rgb(200, 16, 46)},
			{"Magenta", rgb(202, 31, 123)},
			{"Peach", rgb(255, 203, 164)},
			{"Navy Blue", rgb(0, 0, 128)},
			{"Mint Green", rgb(152, 255, 152)},
		},
		Patterns: []string{"Zardozi", "Mirror Work", "Gota Patti", "Thread Embroidery"},
		Styles:   []string{"Bridal", "A-Line", "Flared", "Mermaid"},
	},
	Kurtis: {
		Category: Kurtis,
		Colors: []NamedColor{
			{"White", rgb(250, 250, 250)},
			{"Indigo", rgb(75, 0, 130)},
			{"Mustard", rgb(255, 219, 88)},
			{"Teal", rgb(0, 128, 128)},
			{"Coral", rgb(255, 127, 80)},
		},
		Patterns: []string{"Block Print", "Chikankari", "Bandhani", "Solid"},
		Styles:   []string{"Anarkali", "Straight", "A-Line", "Kaftan"},
	},
	Jewelry: {
		Category: Jewelry,
		Colors: []NamedColor{
			{"Gold", rgb(255, 215, 0)},
			{"Silver", rgb(192, 192, 192)},
			{"Rose Gold", rgb(183, 110, 121)},
			{"Antique Gold", rgb(205, 149, 12)},
		},
		Patterns: []string{"Kundan", "Polki", "Temple", "Meenakari"},
		Styles:   []string{"Necklace Set", "Jhumkas", "Bangles", "Maang Tikka"},
	},
}
