package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"userboard/internal/domain"
	"userboard/internal/schema"
	"userboard/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	logger *logrus.Logger
}

func NewHandler(users service.UserService, logger *logrus.Logger) *Handler {
	return &Handler{
		users:  users,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	router.POST("/users", h.createUser)
	router.GET("/users/:id", h.getUser)
	router.PATCH("/users/:id", h.patchUser)
	router.DELETE("/users/:id", h.deleteUser)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) createUser(c *gin.Context) {
	raw, ok := h.bindRawJSON(c)
	if !ok {
		return
	}

	payload, err := schema.ValidateCreate(raw)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID})
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":          user.Username,
		"registration_time": user.RegistrationTime.Unix(),
	})
}

func (h *Handler) patchUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	raw, ok := h.bindRawJSON(c)
	if !ok {
		return
	}

	payload, err := schema.ValidatePatch(raw)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if _, err := h.users.Patch(c.Request.Context(), id, payload.Username, payload.Password); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// userID parses the :id path segment. Ids are positive integers; anything
// else never names a user, so the response is the not-found envelope.
func (h *Handler) userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, domain.ErrUserNotFound)
		return 0, false
	}
	return id, true
}

// bindRawJSON decodes the body into raw fields so the schema package can
// distinguish absent, null and mistyped values per field.
func (h *Handler) bindRawJSON(c *gin.Context) (map[string]json.RawMessage, bool) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.respondError(c, &schema.ValidationError{Fields: []schema.FieldError{
			{Field: "body", Message: "must be a json object"},
		}})
		return nil, false
	}
	return raw, true
}

// respondError maps domain failures to the error envelope. Failures
// outside the taxonomy are logged and surface as a generic server error,
// never as a 4xx.
func (h *Handler) respondError(c *gin.Context, err error) {
	var validationErr *schema.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, errorEnvelope(validationErr.Fields))
	case errors.Is(err, domain.ErrUserAlreadyExists):
		c.JSON(http.StatusBadRequest, errorEnvelope("user already exists"))
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorEnvelope("user not found"))
	default:
		h.logger.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, errorEnvelope("internal server error"))
	}
}

func errorEnvelope(message any) gin.H {
	return gin.H{"status": "error", "message": message}
}
