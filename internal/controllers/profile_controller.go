package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/auth"
	"aetherlink-be/internal/middleware"
	"aetherlink-be/internal/models"
	"aetherlink-be/internal/response"
	"aetherlink-be/internal/result"
	"aetherlink-be/internal/service"
)

type ProfileController struct {
	profileService service.ProfileService
}

func NewProfileController(profileService service.ProfileService) *ProfileController {
	return &ProfileController{profileService: profileService}
}

// GetByUserID handles GET /api/v1/profiles?userId=
func (pc *ProfileController) GetByUserID(c *gin.Context) {
	userID, ok := requireQuery(c, "userId", "userId parameter is required")
	if !ok {
		return
	}

	profile, err := pc.profileService.GetProfileByUserID(c.Request.Context(), userID)
	respond(c, http.StatusOK, profile, err)
}

// Create handles POST /api/v1/profiles. The owner is the caller.
func (pc *ProfileController) Create(c *gin.Context) {
	var req models.CreateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserID, _ = middleware.UserID(c)

	profile, err := pc.profileService.CreateProfile(c.Request.Context(), &req)
	respond(c, http.StatusCreated, profile, err)
}

// CheckHandle handles GET /api/v1/profiles/check-handle?handle=
func (pc *ProfileController) CheckHandle(c *gin.Context) {
	handle, ok := requireQuery(c, "handle", "Handle parameter is required")
	if !ok {
		return
	}

	available, err := pc.profileService.CheckHandleAvailability(c.Request.Context(), handle)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, models.HandleAvailabilityResponse{Available: available})
}

// GetByHandle handles GET /api/v1/profiles/handle/:handle. Private profiles
// are only visible to their owner; everyone else gets 404.
func (pc *ProfileController) GetByHandle(c *gin.Context) {
	profile, err := pc.profileService.GetProfileByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	if profile == nil || (!profile.IsPublic && profile.UserID != userID) {
		response.Error(c, result.NotFound("Profile not found"))
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetByID handles GET /api/v1/profiles/:id
func (pc *ProfileController) GetByID(c *gin.Context) {
	profile, err := pc.profileService.GetProfileByID(c.Request.Context(), c.Param("id"))
	if err == nil && profile == nil {
		err = result.NotFound("Profile not found")
	}
	respond(c, http.StatusOK, profile, err)
}

// Update handles PATCH /api/v1/profiles/:id
func (pc *ProfileController) Update(c *gin.Context) {
	id := c.Param("id")
	if !pc.authorize(c, id) {
		return
	}

	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := pc.profileService.UpdateProfile(c.Request.Context(), id, &req)
	respond(c, http.StatusOK, profile, err)
}

// Delete handles DELETE /api/v1/profiles/:id
func (pc *ProfileController) Delete(c *gin.Context) {
	id := c.Param("id")
	if !pc.authorize(c, id) {
		return
	}

	respondEmpty(c, pc.profileService.DeleteProfile(c.Request.Context(), id))
}

func (pc *ProfileController) authorize(c *gin.Context, profileID string) bool {
	userID, _ := middleware.UserID(c)

	profile, err := pc.profileService.GetProfileByID(c.Request.Context(), profileID)
	if err == nil {
		err = auth.VerifyProfileOwnership(userID, profile)
	}
	if err != nil {
		response.Error(c, err)
		return false
	}
	return true
}
