// internal/interfaces/http/response/response.go
package response

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/pagination"
)

func init() {
	// Report binding failures under the JSON names clients send
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// Success is the envelope of a successful response
type Success struct {
	Success bool             `json:"success"`
	Data    interface{}      `json:"data"`
	Message string           `json:"message,omitempty"`
	Meta    *pagination.Meta `json:"meta,omitempty"`
}

// Failure is the envelope of a failed response
type Failure struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// OK writes a 200 envelope
func OK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Success{Success: true, Data: data, Message: message})
}

// Created writes a 201 envelope
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Success{Success: true, Data: data, Message: message})
}

// Page writes a 200 envelope with page metadata
func Page(c *gin.Context, data interface{}, meta pagination.Meta) {
	c.JSON(http.StatusOK, Success{Success: true, Data: data, Meta: &meta})
}

// Abort writes a failure envelope and stops the handler chain
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Failure{Error: code, Message: message})
}

// Error maps err to a status and failure envelope. Errors without a kind are
// logged with the request id and answered with a generic 500.
func Error(c *gin.Context, log logrus.FieldLogger, err error) {
	if appErr, ok := apperror.As(err); ok && appErr.Kind != apperror.KindInternal {
		c.JSON(appErr.StatusCode(), Failure{
			Error:   string(appErr.Kind),
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	log.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.FullPath(),
	}).WithError(err).Error("request failed")

	c.JSON(http.StatusInternalServerError, Failure{
		Error:   string(apperror.KindInternal),
		Message: "Internal server error",
	})
}

// BindError answers a request whose body or query failed to bind
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Failure{
		Error:   string(apperror.KindValidation),
		Message: "Invalid request data",
		Details: ValidationDetails(err),
	})
}

// ValidationDetails turns validator errors into field -> rule messages
func ValidationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldName(fe)] = ruleMessage(fe)
	}
	return details
}

// fieldName drops the request type from the namespace, leaving e.g. "timeSlot.date"
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return ns
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must be numeric"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
