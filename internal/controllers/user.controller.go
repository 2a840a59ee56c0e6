package controllers

import (
	"context"
	"net/http"
	"strconv"

	"authhub/internal/models"
	"authhub/internal/repository"
	"authhub/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct {
	users *services.UserService
	log   *zap.Logger
}

func NewUserController(users *services.UserService, log *zap.Logger) *UserController {
	return &UserController{users: users, log: log.Named("user-controller")}
}

// Register godoc
// @Summary Register a new account
// @Description Creates an account waiting for email verification and mails the activation code
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.SignUpRequest true "Sign up data"
// @Success 201 {object} ApiResponse{data=models.User}
// @Failure 400 {object} ApiResponse "Invalid request data"
// @Failure 409 {object} ApiResponse "Duplicate email, phone number or national id"
// @Router /users/register [post]
func (uc *UserController) Register(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, err := uc.users.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusCreated, "User registered. Please verify your email.", user)
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Tags users
// @Accept json
// @Produce json
// @Param verification body models.VerifyEmailRequest true "Email and activation code"
// @Success 200 {object} ApiResponse{data=models.User}
// @Failure 400 {object} ApiResponse "Invalid activation code or account state"
// @Failure 404 {object} ApiResponse "User not found"
// @Router /users/verify-email [post]
func (uc *UserController) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, err := uc.users.VerifyEmailWithCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "Email verified successfully", user)
}

// GetCurrentUser godoc
// @Summary Get the logged in user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ApiResponse{data=models.User}
// @Failure 401 {object} ApiResponse
// @Router /users/current-user [get]
func (uc *UserController) GetCurrentUser(c *gin.Context) {
	user, err := uc.users.GetLoggedInUser(c.Request.Context())
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "", user)
}

// List godoc
// @Summary List users
// @Description Paginated, newest first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, starting at 1"
// @Param size query int false "Page size"
// @Success 200 {object} ApiResponse{data=repository.Page[models.User]}
// @Router /users [get]
func (uc *UserController) List(c *gin.Context) {
	var p repository.Pageable
	if err := c.ShouldBindQuery(&p); err != nil {
		invalidInput(c, err)
		return
	}

	page, err := uc.users.List(c.Request.Context(), p)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "", page)
}

// GetByID godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} ApiResponse{data=models.User}
// @Failure 404 {object} ApiResponse
// @Router /users/{id} [get]
func (uc *UserController) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.users.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "", user)
}

// Search godoc
// @Summary Search users
// @Description Case-insensitive match on "first last", exact status, optional gender and role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param status query string true "User status"
// @Param name query string false "Part of the full name"
// @Param gender query string false "Gender"
// @Param role query string false "Role"
// @Param page query int false "Page, starting at 1"
// @Param size query int false "Page size"
// @Success 200 {object} ApiResponse{data=repository.Page[models.User]}
// @Router /users/search [get]
func (uc *UserController) Search(c *gin.Context) {
	var q models.UserSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidInput(c, err)
		return
	}
	var p repository.Pageable
	if err := c.ShouldBindQuery(&p); err != nil {
		invalidInput(c, err)
		return
	}

	page, err := uc.users.Search(c.Request.Context(), q, p)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "", page)
}

// Update godoc
// @Summary Update profile fields
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body models.UpdateUserRequest true "Profile fields"
// @Success 200 {object} ApiResponse{data=models.User}
// @Failure 409 {object} ApiResponse "Identifying field already used"
// @Router /users/{id} [put]
func (uc *UserController) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	user, err := uc.users.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "User updated successfully", user)
}

// Approve godoc
// @Summary Approve a pending user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} ApiResponse{data=models.User}
// @Failure 400 {object} ApiResponse "User is not pending"
// @Router /users/{id}/approve [put]
func (uc *UserController) Approve(c *gin.Context) {
	uc.transition(c, "User approved successfully", uc.users.Approve)
}

// Reject godoc
// @Summary Reject a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param rejection body models.RejectionRequest true "Reason"
// @Success 200 {object} ApiResponse{data=models.User}
// @Failure 400 {object} ApiResponse "User is already active or rejected"
// @Router /users/{id}/reject [put]
func (uc *UserController) Reject(c *gin.Context) {
	var req models.RejectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	uc.transition(c, "User rejected successfully", func(ctx context.Context, u *models.User) (*models.User, error) {
		return uc.users.Reject(ctx, u, req.RejectionMessage)
	})
}

// Deactivate godoc
// @Summary Deactivate a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} ApiResponse{data=models.User}
// @Router /users/{id}/de-activate [put]
func (uc *UserController) Deactivate(c *gin.Context) {
	uc.transition(c, "User deactivated successfully", uc.users.Deactivate)
}

// MarkAsPending godoc
// @Summary Put a user back to pending
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} ApiResponse{data=models.User}
// @Router /users/{id}/mark-as-pending [put]
func (uc *UserController) MarkAsPending(c *gin.Context) {
	uc.transition(c, "User marked as pending", uc.users.MarkAsPending)
}

// ApproveMany godoc
// @Summary Approve several users at once
// @Description All users are approved or none is
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ids body models.ApproveManyRequest true "User IDs"
// @Success 200 {object} ApiResponse{data=[]models.User}
// @Router /users/approve-many [put]
func (uc *UserController) ApproveMany(c *gin.Context) {
	var req models.ApproveManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	users, err := uc.users.ApproveMany(c.Request.Context(), req.UserIDs)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, strconv.Itoa(len(users))+" users approved", users)
}

// RejectMany godoc
// @Summary Reject several users at once
// @Description All users are rejected or none is
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ids body models.RejectManyRequest true "User IDs and reason"
// @Success 200 {object} ApiResponse{data=[]models.User}
// @Router /users/reject-many [put]
func (uc *UserController) RejectMany(c *gin.Context) {
	var req models.RejectManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	users, err := uc.users.RejectMany(c.Request.Context(), req.UserIDs, req.RejectionMessage)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, strconv.Itoa(len(users))+" users rejected", users)
}

// SendEmail godoc
// @Summary Email every active user of the given roles
// @Description An empty user_types list targets every role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email body models.SendUsersEmailRequest true "Subject, content and roles"
// @Success 200 {object} ApiResponse
// @Router /users/send-email [post]
func (uc *UserController) SendEmail(c *gin.Context) {
	var req models.SendUsersEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	n, err := uc.users.SendCustomEmail(c.Request.Context(), req)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "Email sent to "+strconv.Itoa(n)+" users", nil)
}

// ChangePassword godoc
// @Summary Change the logged in user's password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwords body models.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} ApiResponse
// @Failure 400 {object} ApiResponse "Invalid current password"
// @Router /users/change-password [put]
func (uc *UserController) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	if err := uc.users.ChangePassword(c.Request.Context(), req); err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "Password changed successfully", nil)
}

// UploadProfile godoc
// @Summary Upload a profile image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param file formData file true "Image"
// @Success 200 {object} ApiResponse{data=models.User}
// @Failure 400 {object} ApiResponse "Missing, oversized or non-image file"
// @Router /users/{id}/upload-profile [put]
func (uc *UserController) UploadProfile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "A file is required in the 'file' field"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	defer f.Close()

	user, err := uc.users.ChangeProfileImage(c.Request.Context(), id, f)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "Profile image updated", user)
}

// LoadFile godoc
// @Summary Download a stored file
// @Tags users
// @Produce octet-stream
// @Security BearerAuth
// @Param filename path string true "File name"
// @Success 200 {file} binary
// @Failure 404 {object} ApiResponse
// @Router /users/load-file/{filename} [get]
func (uc *UserController) LoadFile(c *gin.Context) {
	file, f, err := uc.users.LoadFile(c.Request.Context(), c.Param("filename"))
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, f, map[string]string{
		"Content-Disposition": `inline; filename="` + file.Name + `"`,
	})
}

// Delete godoc
// @Summary Delete a user and their notifications
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} ApiResponse
// @Failure 403 {object} ApiResponse "Admins only"
// @Failure 404 {object} ApiResponse
// @Router /users/{id} [delete]
func (uc *UserController) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := uc.users.Delete(c.Request.Context(), id); err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "User deleted successfully", nil)
}

// transition loads the user named by :id and applies fn to it.
func (uc *UserController) transition(c *gin.Context, message string, fn func(context.Context, *models.User) (*models.User, error)) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		fail(c, uc.log, err)
		return
	}

	user, err = fn(ctx, user)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, message, user)
}
