package handler

import (
	"errors"
	"net/http"

	"event-registry/internal/auth"
	"event-registry/internal/model"
	"event-registry/internal/service"
	apperrors "event-registry/pkg/app_errors"
	"event-registry/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegistryHandler struct {
	service  service.RegistryService
	verifier auth.TokenVerifier
}

// NewRegistryHandler builds the HTTP surface. A nil verifier puts caller
// resolution in dev mode (see CallerIdentity).
func NewRegistryHandler(service service.RegistryService, verifier auth.TokenVerifier) *RegistryHandler {
	return &RegistryHandler{service: service, verifier: verifier}
}

func (h *RegistryHandler) RegisterRoutes(r *gin.Engine) {
	identity := CallerIdentity(h.verifier)

	router := r.Group("/api/v1")
	{
		router.GET("registry", h.GetRegistry)
		router.GET("events/:id", h.GetEvent)
		router.GET("events/:id/registrations/:address", h.GetRegistration)
		router.POST("events", identity, h.CreateEvent)
		router.POST("events/:id/registrations", identity, h.RegisterForEvent)
	}
}

func (h *RegistryHandler) GetRegistry(c *gin.Context) {
	count, err := h.service.EventCount(c)
	if err != nil {
		h.handleError(c, err, "GetRegistry")
		return
	}

	h.handleSuccess(c, model.RegistryInfoResponse{
		Owner:                        h.service.Owner(),
		RequiredMembershipCollection: h.service.RequiredMembershipCollection(),
		EventCount:                   count,
	}, http.StatusOK)
}

func (h *RegistryHandler) CreateEvent(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrMissingIdentity, "CreateEvent")
		return
	}
	if caller != h.service.Owner() {
		h.handleError(c, apperrors.ErrNotOwner, "CreateEvent")
		return
	}

	var req model.CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	id, err := h.service.CreateEvent(c, caller, req.Params())
	if err != nil {
		h.handleError(c, err, "CreateEvent")
		return
	}

	h.handleSuccess(c, gin.H{"id": id}, http.StatusCreated)
}

func (h *RegistryHandler) GetEvent(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		h.handleError(c, err, "GetEvent")
		return
	}

	event, err := h.service.EventByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetEvent")
		return
	}

	window, err := h.service.WindowState(c, id)
	if err != nil {
		h.handleError(c, err, "GetEvent")
		return
	}

	h.handleSuccess(c, model.EventResponse{Event: event, Window: window}, http.StatusOK)
}

func (h *RegistryHandler) RegisterForEvent(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		h.handleError(c, apperrors.ErrMissingIdentity, "RegisterForEvent")
		return
	}

	id, err := eventIDParam(c)
	if err != nil {
		h.handleError(c, err, "RegisterForEvent")
		return
	}

	if err := h.service.RegisterForEvent(c, caller, id); err != nil {
		h.handleError(c, err, "RegisterForEvent")
		return
	}

	h.handleSuccess(c, model.RegistrationStatusResponse{
		EventID:    id,
		Address:    caller,
		Registered: true,
	}, http.StatusCreated)
}

func (h *RegistryHandler) GetRegistration(c *gin.Context) {
	var uri model.RegistrationURI
	if err := BindUri(c, &uri); err != nil {
		return
	}

	id, err := parseEventID(uri.ID)
	if err != nil {
		h.handleError(c, err, "GetRegistration")
		return
	}

	addr, err := model.ParseAddress(uri.Address)
	if err != nil {
		h.handleError(c, err, "GetRegistration")
		return
	}

	registered, err := h.service.IsRegistered(c, id, addr)
	if err != nil {
		h.handleError(c, err, "GetRegistration")
		return
	}

	h.handleSuccess(c, model.RegistrationStatusResponse{
		EventID:    id,
		Address:    addr,
		Registered: registered,
	}, http.StatusOK)
}

// Helper functions

func (h *RegistryHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrMissingIdentity):
		log.Warn("Missing caller identity")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": apperrors.ErrMissingIdentity.Error(),
		})
	case errors.Is(err, apperrors.ErrNotOwner):
		log.Warn("Caller is not the owner")
		c.JSON(http.StatusForbidden, gin.H{
			"error": apperrors.ErrNotOwner.Error(),
		})
	case errors.Is(err, apperrors.ErrEmptyTitle),
		errors.Is(err, apperrors.ErrEmptyLocation),
		errors.Is(err, apperrors.ErrDateNotFuture),
		errors.Is(err, apperrors.ErrInvalidDuration),
		errors.Is(err, apperrors.ErrInvalidEventID),
		errors.Is(err, apperrors.ErrInvalidAddress):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": apperrors.ErrEventNotFound.Error(),
		})
	case errors.Is(err, apperrors.ErrRegistrationClosed):
		log.Warn("Registration window elapsed")
		c.JSON(http.StatusConflict, gin.H{
			"error": apperrors.ErrRegistrationClosed.Error(),
		})
	case errors.Is(err, apperrors.ErrAlreadyRegistered):
		log.Warn("Already registered")
		c.JSON(http.StatusConflict, gin.H{
			"error": apperrors.ErrAlreadyRegistered.Error(),
		})
	case errors.Is(err, apperrors.ErrMissingRequiredToken):
		log.Warn("Missing required token")
		c.JSON(http.StatusForbidden, gin.H{
			"error": apperrors.ErrMissingRequiredToken.Error(),
		})
	case errors.Is(err, apperrors.ErrCollaboratorUnavailable):
		log.Error("Membership collaborator unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": apperrors.ErrCollaboratorUnavailable.Error(),
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (h *RegistryHandler) handleSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
