package imaging

import (
	"fmt"
	"image"
	stddraw "image/draw"
	"strings"

	"golang.org/x/image/draw"
)

// Preset names a bounding box pages are proportionally scaled into.
type Preset string

const (
	PresetNone   Preset = ""
	PresetA4     Preset = "A4"
	PresetLetter Preset = "LETTER"
	PresetA3     Preset = "A3"
	PresetA5     Preset = "A5"
	PresetHD     Preset = "HD"
	PresetFHD    Preset = "FHD"
)

// Pixel boxes at 72dpi for the paper sizes, native resolution for the
// screen sizes.
var presetBounds = map[Preset]image.Point{
	PresetA4:     {X: 595, Y: 842},
	PresetLetter: {X: 612, Y: 792},
	PresetA3:     {X: 842, Y: 1191},
	PresetA5:     {X: 420, Y: 595},
	PresetHD:     {X: 1280, Y: 720},
	PresetFHD:    {X: 1920, Y: 1080},
}

// ParsePreset maps a configuration value to a Preset.
func ParsePreset(value string) (Preset, error) {
	p := Preset(strings.ToUpper(strings.TrimSpace(value)))
	if p == PresetNone {
		return PresetNone, nil
	}
	if _, ok := presetBounds[p]; !ok {
		return PresetNone, fmt.Errorf("unknown resize preset %q", value)
	}
	return p, nil
}

// Bounds returns the preset's bounding box. ok is false for PresetNone.
func (p Preset) Bounds() (image.Point, bool) {
	box, ok := presetBounds[p]
	return box, ok
}

// Normalize converts img to RGB, optionally grayscales it, and fits it into
// the preset's bounding box. Source dimensions are never exceeded.
func Normalize(img image.Image, grayscale bool, preset Preset) image.Image {
	out := toRGBA(img)
	if grayscale {
		out = grayscaleRGBA(out)
	}
	return fitWithin(out, preset)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	stddraw.Draw(rgba, bounds, img, bounds.Min, stddraw.Src)
	return rgba
}

func grayscaleRGBA(img *image.RGBA) *image.RGBA {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	stddraw.Draw(gray, bounds, img, bounds.Min, stddraw.Src)
	out := image.NewRGBA(bounds)
	stddraw.Draw(out, bounds, gray, bounds.Min, stddraw.Src)
	return out
}

// fitWithin proportionally scales img into the preset's box with Catmull-Rom
// resampling. Images already inside the box are returned unchanged.
func fitWithin(img *image.RGBA, preset Preset) image.Image {
	box, ok := preset.Bounds()
	if !ok {
		return img
	}

	src := img.Bounds()
	width, height := src.Dx(), src.Dy()
	if width <= box.X && height <= box.Y {
		return img
	}

	scaleX := float64(box.X) / float64(width)
	scaleY := float64(box.Y) / float64(height)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	targetW := int(float64(width) * scale)
	targetH := int(float64(height) * scale)
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}
