package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"storefront-imagery/internal/config"
)

// Item is one product to render.
type Item struct {
	ProductName string `json:"name"`
	Category    string `json:"category"`
}

// FromProducts converts a configured product list.
func FromProducts(products []config.Product) []Item {
	items := make([]Item, 0, len(products))
	for _, p := range products {
		items = append(items, Item{ProductName: p.Name, Category: p.Category})
	}
	return items
}

type productList struct {
	Products []any `json:"products"`
}

// ParseItems reads a product list. It accepts either a bare JSON array or an
// object with a "products" array; each entry may be an object with
// name/category (or productName) keys or a [name, category] pair. Entries
// without a name are dropped.
func ParseItems(payload []byte) ([]Item, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return nil, fmt.Errorf("empty product list")
	}

	var entries []any
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, fmt.Errorf("parse product list: %w", err)
		}
	} else {
		var list productList
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, fmt.Errorf("parse product list: %w", err)
		}
		entries = list.Products
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		item, ok := parseEntry(entry)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("product list has no usable entries")
	}
	return items, nil
}

func parseEntry(entry any) (Item, bool) {
	var item Item
	switch v := entry.(type) {
	case map[string]any:
		item.ProductName = firstString(v, "name", "productName", "product_name")
		item.Category = firstString(v, "category")
	case []any:
		item.ProductName = stringValue(v, 0)
		item.Category = stringValue(v, 1)
	case string:
		item.ProductName = v
	}
	item.ProductName = strings.TrimSpace(item.ProductName)
	item.Category = strings.TrimSpace(item.Category)
	return item, item.ProductName != ""
}

func firstString(values map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := values[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringValue(values []any, index int) string {
	if index < 0 || index >= len(values) {
		return ""
	}
	switch v := values[index].(type) {
	case string:
		return v
	default:
		return ""
	}
}

func intValue(values map[string]any, key string, fallback int) int {
	switch v := values[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// Options carries the optional output settings of a batch request body.
type Options struct {
	Kind    string
	Width   int
	Height  int
	Quality int
	Format  string
	DelayMS int
}

// ParseOptions reads kind/width/height/quality/format/delay_ms from a JSON
// object, keeping fallback values for anything missing or mistyped.
func ParseOptions(payload []byte, fallback Options) Options {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fallback
	}
	opts := fallback
	if kind := firstString(raw, "kind"); kind != "" {
		opts.Kind = kind
	}
	if format := firstString(raw, "format"); format != "" {
		opts.Format = format
	}
	opts.Width = intValue(raw, "width", opts.Width)
	opts.Height = intValue(raw, "height", opts.Height)
	opts.Quality = intValue(raw, "quality", opts.Quality)
	opts.DelayMS = intValue(raw, "delay_ms", opts.DelayMS)
	return opts
}
