package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"brai/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var notFoundMessages = map[string]string{
	"dataset":    "데이터세트를 찾을 수 없습니다",
	"strain":     "계통을 찾을 수 없습니다",
	"model":      "모델을 찾을 수 없습니다",
	"prediction": "예측 결과를 찾을 수 없습니다",
}

const internalErrorMessage = "서버 내부 오류가 발생했습니다"

func respond(c *gin.Context, status int, data ...any) {
	if data == nil {
		data = []any{}
	}
	c.JSON(status, gin.H{"success": true, "data": data})
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":      false,
		"code":         status,
		"errorMessage": message,
	})
}

// fail maps err onto a status code and writes the error envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		nf *models.NotFoundError
		ve *models.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		msg, ok := notFoundMessages[nf.Kind]
		if !ok {
			msg = nf.Error()
		}
		abort(c, http.StatusNotFound, msg)
	case errors.As(err, &ve):
		abort(c, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrNotFound):
		abort(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrValidation):
		abort(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, internalErrorMessage)
	}
}

// bindError converts a gin binding failure into a validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		if len(fields) == 1 {
			return models.Invalid(fields[0], "is %s", tagDescription(verrs[0].Tag()))
		}
		return models.Invalid("", "invalid fields: %s", strings.Join(fields, ", "))
	}
	return models.Invalid("", "malformed request: %v", err)
}

func tagDescription(tag string) string {
	if tag == "required" {
		return "required"
	}
	return fmt.Sprintf("invalid (%s)", tag)
}

// bindOptionalJSON decodes a JSON body into v; an empty body leaves v untouched.
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return bindError(err)
	}
	return nil
}
