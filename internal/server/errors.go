package server

import (
	"encoding/json"
	"errors"
	"net/http"

	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	guestdomain "github.com/evermore-app/evermore/internal/guest/domain"
	"github.com/evermore-app/evermore/internal/identity"
	invitationdomain "github.com/evermore-app/evermore/internal/invitation/domain"
	mediadomain "github.com/evermore-app/evermore/internal/media/domain"
	"github.com/evermore-app/evermore/internal/policy"
	qadomain "github.com/evermore-app/evermore/internal/qa/domain"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware translates the last recorded error into the
// response envelope. Handlers record errors via AbortWithError and never
// write failure bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, gin.H{
			"success": false,
			"message": message,
		})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// respond flattens the entity into the success envelope so clients read
// {"success":true, ...entity fields}.
func respond(c *gin.Context, status int, entity any) {
	body := gin.H{"success": true}
	if entity != nil {
		raw, err := json.Marshal(entity)
		if err == nil {
			fields := map[string]any{}
			if json.Unmarshal(raw, &fields) == nil {
				for k, v := range fields {
					body[k] = v
				}
			}
		}
	}
	c.JSON(status, body)
}

func mapError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal server error"

	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identity.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, "unauthorized"

	case errors.Is(err, policy.ErrForbidden):
		return http.StatusForbidden, "forbidden"

	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, weddingdomain.ErrNotFound),
		errors.Is(err, invitationdomain.ErrNotFound),
		errors.Is(err, guestdomain.ErrNotFound),
		errors.Is(err, mediadomain.ErrNotFound),
		errors.Is(err, qadomain.ErrQuestionNotFound),
		errors.Is(err, qadomain.ErrAnswerNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "not found"

	case errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, invitationdomain.ErrConflict),
		errors.Is(err, guestdomain.ErrAlreadyInvited),
		errors.Is(err, qadomain.ErrAlreadyAnswered):
		return http.StatusConflict, err.Error()

	case isValidationError(err):
		return http.StatusBadRequest, err.Error()

	default:
		// Downstream collaborator failures stay opaque to the client.
		return http.StatusInternalServerError, "internal server error"
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, weddingdomain.ErrInvalidName),
		errors.Is(err, weddingdomain.ErrInvalidStatus),
		errors.Is(err, invitationdomain.ErrExpired),
		errors.Is(err, mediadomain.ErrPendingQuota),
		errors.Is(err, invitationdomain.ErrInvalidEmail),
		errors.Is(err, invitationdomain.ErrInvalidRole),
		errors.Is(err, guestdomain.ErrInvalidEmail),
		errors.Is(err, guestdomain.ErrInvalidStatus),
		errors.Is(err, guestdomain.ErrInvalidRequest),
		errors.Is(err, mediadomain.ErrTooLarge),
		errors.Is(err, mediadomain.ErrUnsupportedType),
		errors.Is(err, mediadomain.ErrInvalidFilter),
		errors.Is(err, mediadomain.ErrInvalidRequest),
		errors.Is(err, qadomain.ErrInvalidPrompt),
		errors.Is(err, qadomain.ErrInvalidBody):
		return true
	default:
		return false
	}
}
