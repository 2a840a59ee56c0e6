package controllers

import (
	"context"
	"net/http"

	"authhub/internal/models"
	"authhub/internal/repository"
	"authhub/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationController struct {
	notifications *services.NotificationService
	log           *zap.Logger
}

func NewNotificationController(notifications *services.NotificationService, log *zap.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, log: log.Named("notification-controller")}
}

// List godoc
// @Summary List the logged in user's notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, starting at 1"
// @Param size query int false "Page size"
// @Success 200 {object} ApiResponse{data=repository.Page[models.Notification]}
// @Router /notifications [get]
func (nc *NotificationController) List(c *gin.Context) {
	nc.page(c, nc.notifications.FindAllByLoggedInUser)
}

// Today godoc
// @Summary Notifications created today
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, starting at 1"
// @Param size query int false "Page size"
// @Success 200 {object} ApiResponse{data=repository.Page[models.Notification]}
// @Router /notifications/today [get]
func (nc *NotificationController) Today(c *gin.Context) {
	nc.page(c, nc.notifications.FindAllOfToday)
}

// Yesterday godoc
// @Summary Notifications created yesterday
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, starting at 1"
// @Param size query int false "Page size"
// @Success 200 {object} ApiResponse{data=repository.Page[models.Notification]}
// @Router /notifications/yesterday [get]
func (nc *NotificationController) Yesterday(c *gin.Context) {
	nc.page(c, nc.notifications.FindAllOfYesterday)
}

// UnreadCount godoc
// @Summary Number of unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ApiResponse{data=int}
// @Router /notifications/unread-count [get]
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	n, err := nc.notifications.GetNumberOfUnreadNotifications(c.Request.Context())
	if err != nil {
		fail(c, nc.log, err)
		return
	}
	respond(c, http.StatusOK, "", n)
}

// Create godoc
// @Summary Send a notification to a user
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notification body models.CreateNotificationRequest true "Notification"
// @Success 201 {object} ApiResponse{data=models.Notification}
// @Failure 404 {object} ApiResponse "User not found"
// @Router /notifications [post]
func (nc *NotificationController) Create(c *gin.Context) {
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	n, err := nc.notifications.Create(c.Request.Context(), req.UserID, req.Message, req.Type)
	if err != nil {
		fail(c, nc.log, err)
		return
	}
	respond(c, http.StatusCreated, "Notification created", n)
}

// MarkAsRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} ApiResponse{data=bool}
// @Failure 403 {object} ApiResponse
// @Failure 404 {object} ApiResponse
// @Router /notifications/{id}/read [put]
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	done, err := nc.notifications.MarkAsRead(c.Request.Context(), id)
	if err != nil {
		fail(c, nc.log, err)
		return
	}
	respond(c, http.StatusOK, "", done)
}

// MarkAsDeleted godoc
// @Summary Mark a notification as deleted
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} ApiResponse{data=bool}
// @Failure 403 {object} ApiResponse
// @Failure 404 {object} ApiResponse
// @Router /notifications/{id}/delete [put]
func (nc *NotificationController) MarkAsDeleted(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	done, err := nc.notifications.MarkAsDeleted(c.Request.Context(), id)
	if err != nil {
		fail(c, nc.log, err)
		return
	}
	respond(c, http.StatusOK, "", done)
}

func (nc *NotificationController) page(c *gin.Context, find func(context.Context, repository.Pageable) (repository.Page[models.Notification], error)) {
	var p repository.Pageable
	if err := c.ShouldBindQuery(&p); err != nil {
		invalidInput(c, err)
		return
	}
	page, err := find(c.Request.Context(), p)
	if err != nil {
		fail(c, nc.log, err)
		return
	}
	respond(c, http.StatusOK, "", page)
}
