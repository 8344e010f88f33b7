package imaging

import (
	"image"
	"math"
)

func trimText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	if max < 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// containRect scales a srcW×srcH image to fit inside dstW×dstH keeping its
// aspect ratio, and centers it. Upscaling is allowed.
func containRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 {
		return image.Rect(0, 0, dstW, dstH)
	}
	w, h := dstW, srcH*dstW/srcW
	if h > dstH {
		w, h = srcW*dstH/srcH, dstH
	}
	w = max(w, 1)
	h = max(h, 1)
	x := (dstW - w) / 2
	y := (dstH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// ringPoint returns the point at angle degrees (clockwise from +x) on a circle.
func ringPoint(center image.Point, radius, degrees int) image.Point {
	sin, cos := math.Sincos(float64(degrees) * math.Pi / 180)
	return image.Pt(center.X+int(math.Round(float64(radius)*cos)), center.Y+int(math.Round(float64(radius)*sin)))
}
