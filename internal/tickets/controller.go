package tickets

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"movitex/internal/shared/utils/response"
	"movitex/pkg/logger"
)

type Controller interface {
	GetBoleta(c *gin.Context)
	DownloadBoleta(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetBoleta(c *gin.Context) {
	boleta, ok := ctrl.load(c)
	if !ok {
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Ticket data retrieved", boleta, nil)
}

func (ctrl *controller) DownloadBoleta(c *gin.Context) {
	boleta, ok := ctrl.load(c)
	if !ok {
		return
	}

	data, filename, err := RenderPDF(boleta)
	if err != nil {
		logger.GetDefault().WithError(err).Error("boleta render failed", "reservation_id", boleta.ReservationID)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to render boleta", nil, nil)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (ctrl *controller) load(c *gin.Context) (*Boleta, bool) {
	boleta, err := ctrl.service.GetBoleta(c.Request.Context(), c.Param("reservationId"))
	switch {
	case err == nil:
		return boleta, true
	case errors.Is(err, ErrNoTicketData):
		response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), gin.H{"redirect": "/"}, nil)
	default:
		logger.GetDefault().WithError(err).Error("ticket retrieval failed", "reservation_id", c.Param("reservationId"))
		response.RespondJSON(c, "error", http.StatusBadGateway, "Ticket service unavailable", nil, nil)
	}
	return nil, false
}
