package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const APIVersion = "v1"

const subscribePath = "subscribe"

// NewRouter wires ctl's actions the way router.go wires ApiController's.
func NewRouter(ctl *Controller) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	apiGroup := router.Group("/api/" + APIVersion)
	apiGroup.POST("/:sheet_id/:cell_id/"+subscribePath, ctl.SubscribeAction)
	apiGroup.POST("/:sheet_id/:cell_id", ctl.SetCellAction)
	apiGroup.GET("/:sheet_id/:cell_id", ctl.GetCellAction)
	apiGroup.GET("/:sheet_id", ctl.GetSheetAction)

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	return router
}
