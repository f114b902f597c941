package tickets

import "github.com/gin-gonic/gin"

// SetupTicketRoutes configures the read-only boleta routes
func SetupTicketRoutes(rg *gin.RouterGroup, controller Controller) {
	tickets := rg.Group("/tickets")
	{
		tickets.GET("/:reservationId", controller.GetBoleta)          // GET /api/v1/tickets/:reservationId
		tickets.GET("/:reservationId/pdf", controller.DownloadBoleta) // GET /api/v1/tickets/:reservationId/pdf
	}
}
