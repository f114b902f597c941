package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"movitex/internal/shared/middleware"
	"movitex/internal/shared/utils/response"
	"movitex/pkg/logger"
)

type Controller interface {
	BeginSession(c *gin.Context)
	GetSession(c *gin.Context)
	ClearSession(c *gin.Context)

	UpdateContact(c *gin.Context)
	UpdateCheckout(c *gin.Context)
	UpdatePassenger(c *gin.Context)
	SetDocumentNumber(c *gin.Context)

	Submit(c *gin.Context)
	GetConfirmation(c *gin.Context)
}

type controller struct {
	manager      *Manager
	holdDuration time.Duration
}

func NewController(manager *Manager, holdDuration time.Duration) Controller {
	return &controller{manager: manager, holdDuration: holdDuration}
}

func (ctrl *controller) BeginSession(c *gin.Context) {
	var req BeginSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	tabID := middleware.TabID(c)
	opts := req.toOptions(ctrl.manager.clock.Now(), ctrl.holdDuration)

	engine, err := ctrl.manager.Begin(c.Request.Context(), tabID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	ctrl.manager.TakeExpired(tabID)

	response.RespondJSON(c, "success", http.StatusCreated, "Reservation session started", NewSessionResponse(engine.Snapshot()), nil)
}

func (ctrl *controller) GetSession(c *gin.Context) {
	tabID := middleware.TabID(c)
	if ctrl.manager.TakeExpired(tabID) {
		respondError(c, ErrSessionExpired)
		return
	}

	allowEmpty, _ := strconv.ParseBool(c.DefaultQuery("allow_empty", "false"))
	engine, err := ctrl.manager.Resume(c.Request.Context(), tabID, allowEmpty)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation session retrieved", NewSessionResponse(engine.Snapshot()), nil)
}

func (ctrl *controller) ClearSession(c *gin.Context) {
	if err := ctrl.manager.Discard(c.Request.Context(), middleware.TabID(c)); err != nil {
		respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Reservation session cleared", nil, nil)
}

func (ctrl *controller) UpdateContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ctrl.mutate(c, func(e *Engine) error {
		return e.UpdateContact(c.Request.Context(), ContactPatch{
			Email:             req.Email,
			EmailConfirmation: req.EmailConfirmation,
			Phone:             req.Phone,
		})
	})
}

func (ctrl *controller) UpdateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ctrl.mutate(c, func(e *Engine) error {
		return e.UpdateCheckout(c.Request.Context(), CheckoutPatch{
			PromoCode:      req.PromoCode,
			PaymentMethod:  req.PaymentMethod,
			PolicyAccepted: req.PolicyAccepted,
		})
	})
}

func (ctrl *controller) UpdatePassenger(c *gin.Context) {
	index, ok := passengerIndex(c)
	if !ok {
		return
	}

	var req PassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ctrl.mutate(c, func(e *Engine) error {
		return e.UpdatePassenger(c.Request.Context(), index, PassengerPatch{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			BirthDate: req.BirthDate,
			Gender:    req.Gender,
		})
	})
}

func (ctrl *controller) SetDocumentNumber(c *gin.Context) {
	index, ok := passengerIndex(c)
	if !ok {
		return
	}

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ctrl.mutate(c, func(e *Engine) error {
		return e.SetDocumentNumber(c.Request.Context(), index, req.DocumentNumber)
	})
}

func (ctrl *controller) Submit(c *gin.Context) {
	engine, err := ctrl.manager.Resume(c.Request.Context(), middleware.TabID(c), false)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := engine.Submit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Reservation created successfully", res, nil)
}

// GetConfirmation serves the read-only confirmation view, which must work
// after the session has been torn down.
func (ctrl *controller) GetConfirmation(c *gin.Context) {
	tabID := middleware.TabID(c)
	expired := ctrl.manager.TakeExpired(tabID)

	engine, err := ctrl.manager.Resume(c.Request.Context(), tabID, true)
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		respondError(c, err)
		return
	}

	resp := ConfirmationResponse{Expired: expired || errors.Is(err, ErrSessionExpired)}
	if engine != nil {
		resp.Reservation = engine.Snapshot().LastReservation
	}
	response.RespondJSON(c, "success", http.StatusOK, "Confirmation retrieved", resp, nil)
}

func (ctrl *controller) mutate(c *gin.Context, apply func(e *Engine) error) {
	engine, err := ctrl.manager.Resume(c.Request.Context(), middleware.TabID(c), false)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := apply(engine); err != nil {
		respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Reservation session updated", NewSessionResponse(engine.Snapshot()), nil)
}

func passengerIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid passenger index", nil, nil)
		return 0, false
	}
	return index, true
}

func respondError(c *gin.Context, err error) {
	var ve *ValidationError
	var se *SubmissionError

	switch {
	case errors.As(err, &ve):
		response.RespondJSON(c, "error", http.StatusBadRequest, ve.Msg, nil, gin.H{"field": ve.Field})
	case errors.Is(err, ErrPassengerIndex):
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
	case errors.Is(err, ErrSubmissionInFlight):
		response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
	case errors.Is(err, ErrRedirectHome), errors.Is(err, ErrNotInitialized):
		response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), RedirectResponse{Redirect: "/"}, nil)
	case errors.Is(err, ErrSessionExpired):
		response.RespondJSON(c, "error", http.StatusGone, err.Error(), RedirectResponse{Redirect: "/"}, nil)
	case errors.As(err, &se):
		response.RespondJSON(c, "error", http.StatusBadGateway, "Reservation could not be completed", nil, se.Err.Error())
	default:
		logger.GetDefault().WithTabID(middleware.TabID(c)).WithError(err).Error("reservation request failed",
			"path", c.Request.URL.Path)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Reservation session unavailable", RedirectResponse{Redirect: "/"}, nil)
	}
}
