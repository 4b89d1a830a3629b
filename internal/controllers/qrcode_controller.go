package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"aetherlink-be/internal/response"
	"aetherlink-be/internal/result"
	"aetherlink-be/internal/service"
)

type QRCodeController struct {
	profileService service.ProfileService
	frontendURL    string
}

func NewQRCodeController(profileService service.ProfileService, frontendURL string) *QRCodeController {
	return &QRCodeController{
		profileService: profileService,
		frontendURL:    frontendURL,
	}
}

// GenerateQRCode handles GET /api/v1/profiles/handle/:handle/qrcode and
// encodes the public page URL of a public profile.
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	profile, err := qc.profileService.GetProfileByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if profile == nil || !profile.IsPublic {
		response.Error(c, result.NotFound("Profile not found"))
		return
	}

	pageURL := qc.frontendURL + "/" + url.PathEscape(profile.Handle)

	// 256x256 pixels, medium error recovery
	qrCode, err := qrcode.New(pageURL, qrcode.Medium)
	if err != nil {
		response.Error(c, result.Internal("Failed to generate QR code"))
		return
	}

	pngData, err := qrCode.PNG(256)
	if err != nil {
		response.Error(c, result.Internal("Failed to generate QR code image"))
		return
	}

	c.Header("Content-Disposition", "inline; filename="+profile.Handle+".png")
	c.Data(http.StatusOK, "image/png", pngData)
}
