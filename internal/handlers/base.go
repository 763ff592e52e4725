package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/services"
	"quillpress/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

// SetupValidator reports JSON field names in binding errors and registers the
// comment enums as validation tags.
func SetupValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("flag_reason", func(fl validator.FieldLevel) bool {
			return models.FlagReason(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("comment_status", func(fl validator.FieldLevel) bool {
			return models.CommentStatus(fl.Field().String()).Valid()
		})
	})
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "flag_reason":
		return fmt.Sprintf("%s must be one of %s", field, joinReasons())
	case "comment_status":
		return fmt.Sprintf("%s must be one of pending, approved, rejected", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func joinReasons() string {
	parts := make([]string, len(models.FlagReasons))
	for i, r := range models.FlagReasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// bindJSON decodes the body into req, writing a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		writeError(c, services.ValidationError("%s", validationMessage(verrs[0])))
		return false
	}
	writeError(c, services.ValidationError("Invalid request body"))
	return false
}

var statusByKind = map[services.Kind]int{
	services.KindValidation:  http.StatusBadRequest,
	services.KindDuplicate:   http.StatusBadRequest,
	services.KindPermission:  http.StatusForbidden,
	services.KindNotFound:    http.StatusNotFound,
	services.KindRateLimited: http.StatusTooManyRequests,
	services.KindInternal:    http.StatusInternalServerError,
}

// writeError maps a service error to its status and the JSON error body.
func writeError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed",
			"request_id", c.GetString(middleware.RequestIDKey),
			"path", c.FullPath(),
			"error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{
		"code":    string(kind),
		"message": services.MessageOf(err),
	}})
}

// paramID parses a positive numeric path parameter, writing a 404 otherwise.
func paramID(c *gin.Context, name, what string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		writeError(c, services.NotFoundError("%s not found", what))
		return 0, false
	}
	return id, true
}
