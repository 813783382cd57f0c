package api

import (
	"bytes"
	"image/png"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/certportal/internal/captcha"
	"github.com/youruser/certportal/internal/certificate"
	"github.com/youruser/certportal/internal/fonts"
	imagepkg "github.com/youruser/certportal/internal/image"
	"github.com/youruser/certportal/internal/store"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// Handler carries the wired portal dependencies for the route set.
type Handler struct {
	Store     *store.Store
	Fonts     *fonts.Library
	Captcha   *captcha.Service
	Downloads *store.DownloadRecorder
	BaseURL   string
	Log       *zap.Logger
}

// health
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// events lists publicly visible events.
func (h *Handler) events(c *gin.Context) {
	events := h.Store.VisibleEvents()
	c.JSON(http.StatusOK, gin.H{"count": len(events), "events": events})
}

// certificateData serves the descriptor for a participant. Resolution
// failures are reported in-band as an error payload with HTTP 200; the
// renderer treats them as domain failures.
func (h *Handler) certificateData(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("participantId"))
	if err != nil {
		c.JSON(http.StatusOK, certificate.Payload{Error: "participant not found"})
		return
	}
	payload := h.Store.DescriptorFor(h.Store.Participant(id), h.BaseURL+"/files")
	c.JSON(http.StatusOK, payload)
}

// certificateImage serves the composed certificate inline.
func (h *Handler) certificateImage(c *gin.Context) {
	_, blob, ok := h.compose(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "image/png", blob)
}

// certificateDownload serves the composed certificate as an attachment
// named StudentName_EventName.png and records the download.
func (h *Handler) certificateDownload(c *gin.Context) {
	p, blob, ok := h.compose(c)
	if !ok {
		return
	}
	if err := h.Downloads.Record(p.ID, c.ClientIP()); err != nil {
		h.Log.Warn("download log write failed", zap.Int("participant", p.ID), zap.Error(err))
	}
	c.Header("Content-Disposition", `attachment; filename="`+h.Store.DownloadFilename(p)+`"`)
	c.Data(http.StatusOK, "image/png", blob)
}

// compose runs the certificate renderer for the participant in the
// request path, resolving assets from the local data dir. On failure
// it writes the error response and returns ok=false.
func (h *Handler) compose(c *gin.Context) (*store.Participant, []byte, bool) {
	id, err := strconv.Atoi(c.Param("participantId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
		return nil, nil, false
	}
	p := h.Store.Participant(id)
	payload := h.Store.DescriptorFor(p, h.Store.DataDir())
	desc, err := certificate.FromPayload(payload)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	// Empty base: compose resolves assets straight from the data dir,
	// not through the public /files routes.
	r := certificate.NewRenderer("", h.Fonts, certificate.WithLogger(h.Log))
	if err := r.Render(desc); err != nil {
		h.Log.Warn("certificate compose failed", zap.Int("participant", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate certificate"})
		return nil, nil, false
	}
	blob, err := r.Blob()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return p, blob, true
}

// templatePreview serves the event's template scaled to at most 800px
// wide with a marker at the configured name anchor.
func (h *Handler) templatePreview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	event := h.Store.Event(id)
	if event == nil || !event.Visible || !event.HasTemplate() {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	img, err := imagepkg.FetchImage(filepath.Join(h.Store.DataDir(), "templates", event.TemplateFile))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	x, y := event.XPercent, event.YPercent
	if !event.Positioned {
		x, y = 50, 50
	}
	preview := imagepkg.TemplatePreview(img, x, y, certificate.ReferenceWidth)

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, preview); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// qr returns a PNG QR code, defaulting to the verification URL of the
// participant given in the "participant" query param.
func (h *Handler) qr(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		if pid := c.Query("participant"); pid != "" {
			text = h.BaseURL + "/api/certificate/" + pid + "/image"
		} else {
			text = h.BaseURL
		}
	}
	size := 400
	if sizeStr := c.Query("size"); sizeStr != "" {
		if v, err := strconv.Atoi(sizeStr); err == nil {
			size = v
		}
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// captchaChallenge issues a math challenge for the lookup form.
func (h *Handler) captchaChallenge(c *gin.Context) {
	c.JSON(http.StatusOK, h.Captcha.New())
}

// certificateLookup resolves an event + email to a participant id,
// gated by the CAPTCHA answer.
func (h *Handler) certificateLookup(c *gin.Context) {
	var req struct {
		EventID int    `json:"event_id"`
		Email   string `json:"email"`
		Answer  string `json:"answer"`
		Token   string `json:"token"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.Captcha.Verify(req.Answer, req.Token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "incorrect answer, please solve the math problem"})
		return
	}
	if !emailPattern.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter a valid email address"})
		return
	}
	event := h.Store.Event(req.EventID)
	if event == nil || !event.Visible {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	p := h.Store.Lookup(req.EventID, req.Email)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no certificate found for this email address"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant_id": p.ID, "name": p.Name})
}
