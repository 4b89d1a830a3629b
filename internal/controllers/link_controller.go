package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/auth"
	"aetherlink-be/internal/middleware"
	"aetherlink-be/internal/models"
	"aetherlink-be/internal/response"
	"aetherlink-be/internal/result"
	"aetherlink-be/internal/service"
)

type LinkController struct {
	linkService    service.LinkService
	profileService service.ProfileService
}

func NewLinkController(linkService service.LinkService, profileService service.ProfileService) *LinkController {
	return &LinkController{
		linkService:    linkService,
		profileService: profileService,
	}
}

// List handles GET /api/v1/links?profileId=
func (lc *LinkController) List(c *gin.Context) {
	profileID, ok := requireQuery(c, "profileId", "profileId parameter is required")
	if !ok {
		return
	}

	links, err := lc.linkService.GetLinksByProfileID(c.Request.Context(), profileID)
	respond(c, http.StatusOK, links, err)
}

// Create handles POST /api/v1/links
func (lc *LinkController) Create(c *gin.Context) {
	var req models.CreateLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	if !lc.authorizeProfile(c, req.ProfileID) {
		return
	}

	link, err := lc.linkService.CreateLink(c.Request.Context(), &req)
	respond(c, http.StatusCreated, link, err)
}

// Reorder handles POST /api/v1/links/reorder
func (lc *LinkController) Reorder(c *gin.Context) {
	var req models.ReorderLinksRequest
	if !bindJSON(c, &req) {
		return
	}
	if !lc.authorizeProfile(c, req.ProfileID) {
		return
	}

	respondEmpty(c, lc.linkService.ReorderLinks(c.Request.Context(), &req))
}

// Get handles GET /api/v1/links/:id
func (lc *LinkController) Get(c *gin.Context) {
	link, err := lc.linkService.GetLinkByID(c.Request.Context(), c.Param("id"))
	if err == nil && link == nil {
		err = result.NotFound("Link not found")
	}
	respond(c, http.StatusOK, link, err)
}

// Update handles PATCH /api/v1/links/:id
func (lc *LinkController) Update(c *gin.Context) {
	id := c.Param("id")
	if !lc.authorizeLink(c, id) {
		return
	}

	var req models.UpdateLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := lc.linkService.UpdateLink(c.Request.Context(), id, &req)
	respond(c, http.StatusOK, link, err)
}

// Delete handles DELETE /api/v1/links/:id
func (lc *LinkController) Delete(c *gin.Context) {
	id := c.Param("id")
	if !lc.authorizeLink(c, id) {
		return
	}

	respondEmpty(c, lc.linkService.DeleteLink(c.Request.Context(), id))
}

// Click handles POST /api/v1/links/:id/click
func (lc *LinkController) Click(c *gin.Context) {
	respondEmpty(c, lc.linkService.TrackClick(c.Request.Context(), c.Param("id")))
}

// authorizeProfile lets the request through when the target profile does not
// exist, so the service can report validation or NOT_FOUND itself.
func (lc *LinkController) authorizeProfile(c *gin.Context, profileID string) bool {
	if profileID == "" {
		return true
	}
	userID, _ := middleware.UserID(c)

	profile, err := lc.profileService.GetProfileByID(c.Request.Context(), profileID)
	if err == nil && profile != nil {
		err = auth.VerifyProfileOwnership(userID, profile)
	}
	if err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

func (lc *LinkController) authorizeLink(c *gin.Context, linkID string) bool {
	userID, _ := middleware.UserID(c)

	err := lc.verifyLink(c.Request.Context(), userID, linkID)
	if err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

func (lc *LinkController) verifyLink(ctx context.Context, userID, linkID string) error {
	link, err := lc.linkService.GetLinkByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link == nil {
		return auth.VerifyLinkOwnership(userID, nil, nil)
	}

	profile, err := lc.profileService.GetProfileByID(ctx, link.ProfileID)
	if err != nil {
		return err
	}
	return auth.VerifyLinkOwnership(userID, link, profile)
}
