package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/pkg/auth"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
	pkgvalidator "github.com/careconnect/careconnect-api/pkg/validator"
)

// ContextEntityID holds the id of the entity a handler just created.
const ContextEntityID = "entity_id"

type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
	Data    interface{}     `json:"data,omitempty"`
	Meta    *model.ListMeta `json:"meta,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string, details ...string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
		Errors:  details,
	}
}

func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

func RespondCreated(c *gin.Context, data interface{}) {
	if e, ok := data.(interface{ GetID() uuid.UUID }); ok && e.GetID() != uuid.Nil {
		c.Set(ContextEntityID, e.GetID().String())
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(data))
}

func RespondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, &Response{Status: "success", Message: message})
}

func RespondList(c *gin.Context, data interface{}, p model.Pagination, total int64) {
	resp := NewSuccessResponse(data)
	resp.Meta = model.NewListMeta(p, total)
	c.JSON(http.StatusOK, resp)
}

// RespondError writes err as an error envelope. AppErrors keep their status and
// message; anything else is reported as an internal error.
func RespondError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	message := http.StatusText(status)
	var details []string
	if appErr, ok := apperrors.As(err); ok {
		message = appErr.Message
		details = appErr.Details
	}

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, NewErrorResponse(message, details...))
}

// BindJSON binds the request body into req. Validation failures answer 422
// with one message per field, malformed bodies answer 400.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		RespondError(c, apperrors.Validation("validation failed", pkgvalidator.Messages(verrs)...))
		return
	}
	RespondError(c, apperrors.BadRequest("invalid request body", err))
}

// ParamID parses a uuid path parameter.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, apperrors.BadRequest("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

// QueryUUID parses an optional uuid query parameter.
func QueryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, apperrors.BadRequest("invalid "+name, err))
		return nil, false
	}
	return &id, true
}

// QueryTime parses an optional RFC3339 or YYYY-MM-DD query parameter.
func QueryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		RespondError(c, apperrors.BadRequest(name+" must be RFC3339 or YYYY-MM-DD", err))
		return nil, false
	}
	return &t, true
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

// Claims returns the authenticated caller. The auth middleware guarantees it
// on protected routes.
func Claims(c *gin.Context) *auth.Claims {
	claims, _ := auth.FromContext(c.Request.Context())
	if claims == nil {
		return &auth.Claims{}
	}
	return claims
}
