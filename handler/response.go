package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/service"
	"github.com/sajag-gupta/riseup/validation"
)

// statusFor maps service errors to HTTP status codes. Order matters:
// ErrEmailTaken wraps ErrConflict.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidPromo),
		errors.Is(err, service.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes {message}. Unmapped errors are logged and hidden from the
// client.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(logger.EventGeneral, "Request failed", logger.Fields(
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error(),
		))
		_ = c.Error(err)
		c.JSON(status, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	logger.Warn(logger.EventValidationFailure, "Invalid request", logger.Fields(
		"path", c.FullPath(),
		"ip", c.ClientIP(),
		"error", err.Error(),
	))
	c.JSON(http.StatusBadRequest, gin.H{"message": validation.Message(err)})
}

// bind decodes JSON or multipart form bodies depending on Content-Type.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context) (dto.ListQuery, bool) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return q, false
	}
	return q, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm)
}

// formFile returns the named upload or nil when the request carries none.
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	if !isMultipart(c) {
		return nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	if !isMultipart(c) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File[field]
}
