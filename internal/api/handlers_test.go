package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/certportal/internal/captcha"
	"github.com/youruser/certportal/internal/certificate"
	"github.com/youruser/certportal/internal/fonts"
	"github.com/youruser/certportal/internal/store"
)

const testEventsCSV = `id,name,description,visible,template_file,x_percent,y_percent,font_size,font_color,font_family,font_weight
1,Go Conference 2026,Annual conference,true,goconf.png,50,50,40,#000000,Arial,bold
`

const testParticipantsCSV = `id,event_id,name,email,certificate_file
10,1,Ada Lovelace,ada@example.com,
11,1,Grace Hopper,grace@example.com,hopper.png
`

type portal struct {
	ts      *httptest.Server
	handler *Handler
}

func newTestPortal(t *testing.T) *portal {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	writeFixture(t, filepath.Join(dataDir, "events.csv"), []byte(testEventsCSV))
	writeFixture(t, filepath.Join(dataDir, "participants.csv"), []byte(testParticipantsCSV))
	writeFixture(t, filepath.Join(dataDir, "templates", "goconf.png"),
		encodePNG(t, 800, 600, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	writeFixture(t, filepath.Join(dataDir, "certificates", "hopper.png"),
		encodePNG(t, 600, 400, color.NRGBA{R: 10, G: 200, B: 30, A: 255}))

	st, err := store.LoadFromDataDir(dataDir)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	lib, err := fonts.NewLibrary(fonts.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("font library: %v", err)
	}
	downloads, err := store.OpenDownloadLog("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("download log: %v", err)
	}

	h := &Handler{
		Store:     st,
		Fonts:     lib,
		Captcha:   captcha.NewService([]byte("test-secret")),
		Downloads: downloads,
		Log:       zap.NewNop(),
	}
	r := gin.New()
	RegisterRoutes(r, h)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	h.BaseURL = ts.URL
	return &portal{ts: ts, handler: h}
}

func writeFixture(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.New(w, h, c)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	p := newTestPortal(t)
	var body map[string]string
	resp := getJSON(t, p.ts.URL+"/api/health", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: %d %v", resp.StatusCode, body)
	}
}

func TestEventsListsVisible(t *testing.T) {
	p := newTestPortal(t)
	var body struct {
		Count int `json:"count"`
	}
	if resp := getJSON(t, p.ts.URL+"/api/events", &body); resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
}

func TestCertificateDataUnknownParticipant(t *testing.T) {
	p := newTestPortal(t)
	var payload certificate.Payload
	resp := getJSON(t, p.ts.URL+"/api/certificate-data/999", &payload)
	// resolution failures stay HTTP 200 with an in-band error
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if payload.Error != "participant not found" {
		t.Fatalf("error = %q", payload.Error)
	}
}

func TestCertificateDataTemplateDescriptor(t *testing.T) {
	p := newTestPortal(t)
	var payload certificate.Payload
	getJSON(t, p.ts.URL+"/api/certificate-data/10", &payload)
	if payload.Kind != certificate.KindTemplate || payload.Name != "Ada Lovelace" {
		t.Fatalf("payload: %+v", payload)
	}
	if !strings.HasPrefix(payload.TemplateURL, p.ts.URL+"/files/templates/") {
		t.Fatalf("template url = %q", payload.TemplateURL)
	}
}

func TestRendererAgainstLivePortal(t *testing.T) {
	p := newTestPortal(t)
	lib, err := fonts.NewLibrary(fonts.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("font library: %v", err)
	}

	r := certificate.NewRenderer(p.ts.URL, lib)
	if !r.Load(context.Background(), "10") {
		t.Fatal("expected template load to succeed")
	}
	if b := r.Image().Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("surface %dx%d, want 800x600", b.Dx(), b.Dy())
	}

	r2 := certificate.NewRenderer(p.ts.URL, lib)
	if !r2.Load(context.Background(), "11") {
		t.Fatal("expected custom load to succeed")
	}
	if b := r2.Image().Bounds(); b.Dx() != 600 || b.Dy() != 400 {
		t.Fatalf("surface %dx%d, want 600x400", b.Dx(), b.Dy())
	}

	if r3 := certificate.NewRenderer(p.ts.URL, lib); r3.Load(context.Background(), "999") {
		t.Fatal("expected load for unknown participant to fail")
	}
}

func TestCertificateImageEndpoint(t *testing.T) {
	p := newTestPortal(t)
	resp, err := http.Get(p.ts.URL + "/api/certificate/10/image")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("image %dx%d, want 800x600", b.Dx(), b.Dy())
	}
}

func TestCertificateDownloadEndpoint(t *testing.T) {
	p := newTestPortal(t)
	resp, err := http.Get(p.ts.URL + "/api/certificate/10/download")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	cd := resp.Header.Get("Content-Disposition")
	if !strings.Contains(cd, "Ada_Lovelace_Go_Conference_2026.png") {
		t.Fatalf("content-disposition = %q", cd)
	}

	n, err := p.handler.Downloads.Count(10)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("download count = %d, want 1", n)
	}
}

func TestCertificateEndpointsUnknownParticipant(t *testing.T) {
	p := newTestPortal(t)
	for _, path := range []string{"/api/certificate/999/image", "/api/certificate/999/download"} {
		resp, err := http.Get(p.ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: status %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestTemplatePreviewEndpoint(t *testing.T) {
	p := newTestPortal(t)
	resp, err := http.Get(p.ts.URL + "/api/template-preview/1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() > certificate.ReferenceWidth {
		t.Fatalf("preview width %d exceeds %d", img.Bounds().Dx(), certificate.ReferenceWidth)
	}
}

func TestQREndpoint(t *testing.T) {
	p := newTestPortal(t)
	resp, err := http.Get(p.ts.URL + "/api/qr?participant=10&size=200")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Fatalf("qr width %d, want 200", img.Bounds().Dx())
	}
}

func TestCaptchaLookupFlow(t *testing.T) {
	p := newTestPortal(t)

	var ch captcha.Challenge
	getJSON(t, p.ts.URL+"/api/captcha", &ch)
	if ch.Question == "" || ch.Token == "" {
		t.Fatalf("incomplete challenge: %+v", ch)
	}

	lookup := func(email, answer, token string) (*http.Response, map[string]any) {
		body, _ := json.Marshal(map[string]any{
			"event_id": 1, "email": email, "answer": answer, "token": token,
		})
		resp, err := http.Post(p.ts.URL+"/api/certificate-lookup", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		defer resp.Body.Close()
		var out map[string]any
		json.NewDecoder(resp.Body).Decode(&out)
		return resp, out
	}

	answer := solveQuestion(t, ch.Question)
	resp, out := lookup("ada@example.com", answer, ch.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup status %d: %v", resp.StatusCode, out)
	}
	if id, _ := out["participant_id"].(float64); int(id) != 10 {
		t.Fatalf("participant_id = %v", out["participant_id"])
	}

	getJSON(t, p.ts.URL+"/api/captcha", &ch)
	if resp, _ := lookup("ada@example.com", "99999", ch.Token); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong answer: status %d, want 400", resp.StatusCode)
	}

	getJSON(t, p.ts.URL+"/api/captcha", &ch)
	if resp, _ := lookup("nobody@example.com", solveQuestion(t, ch.Question), ch.Token); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown email: status %d, want 404", resp.StatusCode)
	}

	getJSON(t, p.ts.URL+"/api/captcha", &ch)
	if resp, _ := lookup("not-an-email", solveQuestion(t, ch.Question), ch.Token); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad email: status %d, want 400", resp.StatusCode)
	}
}

func solveQuestion(t *testing.T, question string) string {
	t.Helper()
	var a, b int
	var op string
	if _, err := fmt.Sscanf(question, "%d %s %d = ?", &a, &op, &b); err != nil {
		t.Fatalf("unparseable question %q: %v", question, err)
	}
	switch op {
	case "+":
		return strconv.Itoa(a + b)
	case "-":
		return strconv.Itoa(a - b)
	default:
		return strconv.Itoa(a * b)
	}
}
