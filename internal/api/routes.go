package api

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/events", h.events)
		api.GET("/captcha", h.captchaChallenge)
		api.POST("/certificate-lookup", h.certificateLookup)
		api.GET("/certificate-data/:participantId", h.certificateData)
		api.GET("/certificate/:participantId/image", h.certificateImage)
		api.GET("/certificate/:participantId/download", h.certificateDownload)
		api.GET("/template-preview/:eventId", h.templatePreview)
		api.GET("/qr", h.qr)
	}

	// Asset URLs referenced by certificate descriptors
	r.Static("/files/templates", filepath.Join(h.Store.DataDir(), "templates"))
	r.Static("/files/certificates", filepath.Join(h.Store.DataDir(), "certificates"))
}
