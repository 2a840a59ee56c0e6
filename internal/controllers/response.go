package controllers

import (
	"errors"
	"net/http"

	"authhub/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApiResponse is the envelope of every JSON response.
type ApiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, ApiResponse{Success: true, Message: message, Data: data})
}

// fail maps err to its HTTP status. Unclassified errors are logged and hidden.
func fail(c *gin.Context, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "Internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, ApiResponse{Success: false, Message: message})
}

func invalidInput(c *gin.Context, err error) {
	res := ApiResponse{Success: false, Message: "Invalid request data"}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		res.Errors = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			res.Errors[fieldName(fe)] = validationMessage(fe)
		}
	} else {
		res.Message = "Invalid request data: " + err.Error()
	}
	c.JSON(http.StatusBadRequest, res)
}

func fieldName(fe validator.FieldError) string {
	if fe.Field() == "" {
		return fe.Namespace()
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be 9 to 12 digits"
	case "password":
		return "must be at least 8 characters with upper and lower case letters, a digit and a symbol"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must contain at least " + fe.Param() + " item(s)"
	default:
		return "is invalid"
	}
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "Invalid " + name + ", expected a UUID"})
		return uuid.Nil, false
	}
	return id, true
}
