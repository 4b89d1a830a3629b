package controllers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/models"
	"aetherlink-be/internal/response"
	"aetherlink-be/internal/result"
	"aetherlink-be/internal/service"
)

// InternalTokenHeader carries the shared secret for internal routes.
const InternalTokenHeader = "X-Internal-Token"

type AuthController struct {
	authService   service.AuthService
	internalToken string
}

func NewAuthController(authService service.AuthService, internalToken string) *AuthController {
	return &AuthController{
		authService:   authService,
		internalToken: internalToken,
	}
}

// Register handles POST /api/v1/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.authService.Register(c.Request.Context(), &req)
	respond(c, http.StatusCreated, user, err)
}

// Login handles POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := ac.authService.Login(c.Request.Context(), &req)
	respond(c, http.StatusOK, resp, err)
}

// GetUser handles GET /api/v1/auth/user?email=
func (ac *AuthController) GetUser(c *gin.Context) {
	email, ok := requireQuery(c, "email", "email parameter is required")
	if !ok {
		return
	}

	user, err := ac.authService.GetUserByEmail(c.Request.Context(), email)
	respond(c, http.StatusOK, user, err)
}

// Verify handles GET /api/v1/auth/verify?email=. It returns the password hash
// and is only reachable with the internal token.
func (ac *AuthController) Verify(c *gin.Context) {
	token := c.GetHeader(InternalTokenHeader)
	if ac.internalToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(ac.internalToken)) != 1 {
		response.Error(c, result.Unauthorized("Authentication required"))
		return
	}

	email, ok := requireQuery(c, "email", "email parameter is required")
	if !ok {
		return
	}

	user, err := ac.authService.GetUserByEmailWithPassword(c.Request.Context(), email)
	if err != nil || user == nil {
		respond[*models.CredentialsResponse](c, http.StatusOK, nil, err)
		return
	}
	c.JSON(http.StatusOK, &models.CredentialsResponse{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	})
}
