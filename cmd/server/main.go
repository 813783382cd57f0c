package main

import (
	"crypto/rand"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/certportal/internal/api"
	"github.com/youruser/certportal/internal/captcha"
	"github.com/youruser/certportal/internal/fonts"
	"github.com/youruser/certportal/internal/store"
	"github.com/youruser/certportal/internal/util"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dataDir := envOr("DATA_DIR", "data")
	for _, sub := range []string{"templates", "certificates"} {
		if err := util.EnsureDir(filepath.Join(dataDir, sub)); err != nil {
			log.Fatal("data dir setup failed", zap.Error(err))
		}
	}

	st, err := store.LoadFromDataDir(dataDir)
	if err != nil {
		log.Fatal("loading event data failed", zap.String("dir", dataDir), zap.Error(err))
	}

	lib, err := fonts.Load(envOr("FONTS_CONFIG", "fonts.toml"), log)
	if err != nil {
		log.Fatal("font setup failed", zap.Error(err))
	}

	downloads, err := store.OpenDownloadLog(envOr("DOWNLOADS_DB", filepath.Join(dataDir, "downloads.db")))
	if err != nil {
		log.Fatal("download log setup failed", zap.Error(err))
	}

	secret := []byte(os.Getenv("CAPTCHA_SECRET"))
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatal("captcha secret generation failed", zap.Error(err))
		}
	}

	port := envOr("PORT", "8080")
	h := &api.Handler{
		Store:     st,
		Fonts:     lib,
		Captcha:   captcha.NewService(secret),
		Downloads: downloads,
		BaseURL:   envOr("BASE_URL", "http://localhost:"+port),
		Log:       log,
	}

	r := gin.Default()
	api.RegisterRoutes(r, h)

	log.Info("starting server", zap.String("addr", "http://localhost:"+port))
	if err := r.Run(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
