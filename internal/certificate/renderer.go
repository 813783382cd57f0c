package certificate

import (
	"context"
	"fmt"
	"image"
	"math"
	"net/http"
	"strings"

	"github.com/gogpu/gg"
	"go.uber.org/zap"

	"github.com/youruser/certportal/internal/fonts"
	imagepkg "github.com/youruser/certportal/internal/image"
)

// Renderer composes a participant's certificate onto an owned drawing
// surface. The pipeline is strictly sequential: fetch descriptor,
// dispatch on kind, load the source image, resize the surface to its
// natural dimensions, blit, and (for templates) draw the name.
//
// A Renderer is single-owner state. Calling Load again while a prior
// Load is still running is not supported; callers must wait for the
// first call to return.
type Renderer struct {
	fetcher *Fetcher
	fonts   *fonts.Library
	surface *gg.Context
	loaded  image.Image
	desc    Descriptor
	log     *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the diagnostic log sink. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// WithHTTPClient overrides the client used for descriptor fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Renderer) { r.fetcher.Client = c }
}

// NewRenderer creates a renderer for the portal at baseURL. The
// surface starts out as a 1x1 placeholder and takes the dimensions of
// whichever image the next successful Load brings in.
func NewRenderer(baseURL string, lib *fonts.Library, opts ...Option) *Renderer {
	r := &Renderer{
		fetcher: NewFetcher(baseURL),
		fonts:   lib,
		surface: gg.NewContext(1, 1),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load runs the full pipeline for one participant. Every failure is
// logged and collapsed to false; no error escapes. On success the
// surface holds the finished certificate and the output accessors
// become valid.
func (r *Renderer) Load(ctx context.Context, participantID string) bool {
	desc, err := r.fetcher.Fetch(ctx, participantID)
	if err != nil {
		r.log.Warn("certificate data fetch failed",
			zap.String("participant", participantID), zap.Error(err))
		return false
	}
	if err := r.Render(desc); err != nil {
		r.log.Warn("certificate render failed",
			zap.String("participant", participantID), zap.Error(err))
		return false
	}
	r.desc = desc
	return true
}

// Render composes an already-fetched descriptor onto the surface.
func (r *Renderer) Render(desc Descriptor) error {
	switch d := desc.(type) {
	case *CustomDescriptor:
		return r.renderCustom(d)
	case *TemplateDescriptor:
		return r.renderTemplate(d)
	default:
		return fmt.Errorf("unhandled descriptor type %T", desc)
	}
}

// renderCustom blits the finished certificate image unmodified.
func (r *Renderer) renderCustom(d *CustomDescriptor) error {
	img, err := imagepkg.FetchImage(r.resolve(d.CertificateURL))
	if err != nil {
		return &ImageLoadError{URL: d.CertificateURL, Err: err}
	}
	return r.blit(img)
}

// renderTemplate blits the template background and draws the
// participant's name centered at the configured anchor. Text longer
// than the template is drawn as-is and may overflow; there is no
// wrapping or truncation.
func (r *Renderer) renderTemplate(d *TemplateDescriptor) error {
	img, err := imagepkg.FetchImage(r.resolve(d.TemplateURL))
	if err != nil {
		return &TemplateLoadError{URL: d.TemplateURL, Err: err}
	}
	if err := r.blit(img); err != nil {
		return &TemplateLoadError{URL: d.TemplateURL, Err: err}
	}

	b := img.Bounds()
	x, y := anchorPoint(d.XPercent, d.YPercent, b.Dx(), b.Dy())
	size := scaledFontSize(d.FontSize, b.Dx())

	r.surface.SetFont(r.fonts.Face(d.FontFamily, d.FontWeight, size))
	r.surface.SetHexColor(d.FontColor)
	r.surface.DrawStringAnchored(d.Name, x, y, 0.5, 0.5)
	return nil
}

// blit resizes the surface to the image's natural dimensions and draws
// it at the origin with no scaling.
func (r *Renderer) blit(img image.Image) error {
	b := img.Bounds()
	if err := r.surface.Resize(b.Dx(), b.Dy()); err != nil {
		return err
	}
	r.surface.DrawImage(gg.ImageBufFromImage(img), 0, 0)
	r.loaded = img
	return nil
}

// resolve makes relative asset URLs absolute against the portal base.
func (r *Renderer) resolve(u string) string {
	if strings.HasPrefix(u, "/") {
		return r.fetcher.BaseURL + u
	}
	return u
}

// Image returns the finished surface contents.
func (r *Renderer) Image() image.Image { return r.surface.Image() }

// LoadedImage returns the most recently loaded source image, retained
// so its natural dimensions stay inspectable. The surface already
// holds the composited pixels; this handle is not needed for output.
func (r *Renderer) LoadedImage() image.Image { return r.loaded }

// Descriptor returns the descriptor behind the last successful Load,
// or nil.
func (r *Renderer) Descriptor() Descriptor { return r.desc }

// anchorPoint maps percentage coordinates to absolute pixels, keeping
// overlay placement resolution-independent.
func anchorPoint(xPercent, yPercent float64, w, h int) (x, y float64) {
	return xPercent / 100 * float64(w), yPercent / 100 * float64(h)
}

// scaledFontSize scales the nominal size by width/ReferenceWidth so
// text keeps its proportions across template resolutions.
func scaledFontSize(size float64, w int) float64 {
	return math.Round(size * float64(w) / ReferenceWidth)
}
