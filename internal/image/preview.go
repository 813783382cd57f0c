package imagepkg

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// marker cross-hair arm length and color for template previews
const markerArm = 12

var markerColor = color.NRGBA{R: 0xe0, G: 0x20, B: 0x20, A: 0xff}

// TemplatePreview renders an admin preview of a certificate template:
// the template scaled down to at most maxWidth, with a cross-hair
// marker at the configured name anchor so the position can be checked
// without generating a real certificate.
func TemplatePreview(tmpl image.Image, xPercent, yPercent float64, maxWidth int) *image.NRGBA {
	out := imaging.Clone(tmpl)
	if maxWidth > 0 && out.Bounds().Dx() > maxWidth {
		out = imaging.Resize(out, maxWidth, 0, imaging.Lanczos)
	}

	b := out.Bounds()
	cx := int(xPercent / 100 * float64(b.Dx()))
	cy := int(yPercent / 100 * float64(b.Dy()))

	for d := -markerArm; d <= markerArm; d++ {
		setIfInside(out, cx+d, cy)
		setIfInside(out, cx, cy+d)
	}
	return out
}

func setIfInside(img *image.NRGBA, x, y int) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, markerColor)
	}
}
