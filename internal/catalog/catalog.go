// Package catalog holds the per-category color, pattern and style templates
// used to render placeholder product images.
package catalog

import (
	"image/color"
	"sort"
	"strings"
)

// Category is a product taxonomy bucket. The zero value is Unknown.
type Category int

const (
	Unknown Category = iota
	Sarees
	Lehengas
	Kurtis
	Jewelry
)

// DefaultCategory is used whenever a name does not match a known category.
const DefaultCategory = Sarees

var categoryNames = map[Category]string{
	Sarees:   "Sarees",
	Lehengas: "Lehengas",
	Kurtis:   "Kurtis",
	Jewelry:  "Jewelry",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Unknown"
}

// ParseCategory matches name exactly against the known category names.
func ParseCategory(name string) (Category, bool) {
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return Unknown, false
}

// Categories returns the known categories in declaration order.
func Categories() []Category {
	return []Category{Sarees, Lehengas, Kurtis, Jewelry}
}

// NamedColor is a template color with its display name.
type NamedColor struct {
	Name  string
	Color color.RGBA
}

// Template is the immutable rendering vocabulary of a category.
type Template struct {
	Category Category
	Colors   []NamedColor
	Patterns []string
	Styles   []string
}

// Rand is the subset of *math/rand.Rand the renderers draw from.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Pick returns a template color chosen uniformly at random.
func (t Template) Pick(rng Rand) NamedColor {
	return t.Colors[rng.Intn(len(t.Colors))]
}

// Pattern returns a pattern label chosen uniformly at random.
func (t Template) Pattern(rng Rand) string {
	if len(t.Patterns) == 0 {
		return ""
	}
	return t.Patterns[rng.Intn(len(t.Patterns))]
}

// ColorNames lists the template's color names sorted alphabetically.
func (t Template) ColorNames() []string {
	names := make([]string, 0, len(t.Colors))
	for _, c := range t.Colors {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

func (t Template) clone() Template {
	return Template{
		Category: t.Category,
		Colors:   append([]NamedColor(nil), t.Colors...),
		Patterns: append([]string(nil), t.Patterns...),
		Styles:   append([]string(nil), t.Styles...),
	}
}

// Lookup returns the template for an exact category name. Unknown names get
// the default template; the bool reports whether name matched.
func Lookup(name string) (Template, bool) {
	c, ok := ParseCategory(name)
	if !ok {
		return templates[DefaultCategory].clone(), false
	}
	return templates[c].clone(), true
}

// For returns the template of c, falling back to the default for Unknown.
func For(c Category) Template {
	t, ok := templates[c]
	if !ok {
		t = templates[DefaultCategory]
	}
	return t.clone()
}

// Slug turns a category name into a filename fragment made of [a-z0-9-]:
// "Home/Decor" -> "home-decor". Runs of other characters become one "-".
// A name with nothing usable yields the default category's slug.
func Slug(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	if b.Len() == 0 {
		return strings.ToLower(DefaultCategory.String())
	}
	return b.String()
}
