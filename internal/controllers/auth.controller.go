package controllers

import (
	"net/http"

	"authhub/internal/models"
	"authhub/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	auth  *services.AuthService
	users *services.UserService
	log   *zap.Logger
}

func NewAuthController(auth *services.AuthService, users *services.UserService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, users: users, log: log.Named("auth-controller")}
}

// Login godoc
// @Summary Log in
// @Description Returns a bearer token for an active account
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Email and password"
// @Success 200 {object} ApiResponse{data=models.LoginResponse}
// @Failure 401 {object} ApiResponse "Invalid email or password"
// @Failure 403 {object} ApiResponse "Account is not active"
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	res, err := ac.auth.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, ac.log, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", res)
}

// ForgotPassword godoc
// @Summary Request a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Account email"
// @Success 200 {object} ApiResponse
// @Failure 404 {object} ApiResponse
// @Router /auth/forgot-password [post]
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	if err := ac.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		fail(c, ac.log, err)
		return
	}
	respond(c, http.StatusOK, "A reset code was sent to your email", nil)
}

// ResetPassword godoc
// @Summary Reset a password with the mailed code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Email, code and new password"
// @Success 200 {object} ApiResponse
// @Failure 400 {object} ApiResponse "Invalid code"
// @Router /auth/reset-password [post]
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	if err := ac.users.ResetPassword(c.Request.Context(), req); err != nil {
		fail(c, ac.log, err)
		return
	}
	respond(c, http.StatusOK, "Password reset successfully", nil)
}
