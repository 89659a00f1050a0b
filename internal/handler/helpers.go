package handler

import (
	"errors"
	"net/http"
	"strings"

	"stockhub/internal/apierror"
	"stockhub/internal/apperror"
	"stockhub/internal/dto"
	"stockhub/internal/middleware"
	"stockhub/internal/softdelete"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// exposeInternal attaches the raw cause of internal errors to responses.
// router.New turns it off in production.
var exposeInternal = true

// ExposeInternalErrors sets whether internal error detail reaches clients.
func ExposeInternalErrors(on bool) { exposeInternal = on }

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := dto.Validate(req); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters into q and validates them.
func bindQuery(c *gin.Context, q interface{}) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	if err := dto.Validate(q); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// pathID parses the :id path parameter, answering 400 when it is not a uuid.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// listOptions reads ?include_deleted into soft-delete options.
func listOptions(c *gin.Context) (softdelete.Options, bool) {
	var f dto.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return softdelete.Options{}, false
	}
	return softdelete.Options{IncludeDeleted: f.IncludeDeleted}, true
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity
	case apperror.KindInvariant, apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the envelope for err. Domain errors keep their message;
// anything else is logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("request failed")
		msg := "internal server error"
		if exposeInternal {
			msg += ": " + err.Error()
		}
		c.JSON(http.StatusInternalServerError, apierror.New(msg))
		return
	}

	status := StatusOf(appErr.Kind)
	var fields dto.FieldErrors
	if errors.As(appErr.Err, &fields) {
		c.JSON(status, apierror.NewValidation(fields))
		return
	}
	c.JSON(status, apierror.New(clientMessage(err, appErr)))
}

// clientMessage keeps context added by wrapping (such as "items[2]: ") but
// drops the storage cause behind a domain error.
func clientMessage(err error, appErr *apperror.Error) string {
	prefix := strings.TrimSuffix(err.Error(), appErr.Error())
	return prefix + appErr.Message
}
