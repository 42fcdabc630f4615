package handlers

import (
	_ "punogaria/docs"
	"punogaria/internal/logger"
	"punogaria/internal/metrics"
	"punogaria/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	limits   RunLimits
}

// NewHandler constructs a new HTTP handler with dependencies. m may be nil.
func NewHandler(services *service.Service, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{services: services, log: log, metrics: m, limits: DefaultRunLimits()}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.metrics.GinMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.POST("/sessions", h.createSession)

	scoped := api.Group("", h.sessionMiddleware)
	{
		h.registerSessionRoutes(scoped)
		h.registerSimulationRoutes(scoped)
		h.registerPumpRoutes(scoped)
		h.registerLogRoutes(scoped)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	api.GET("/session", h.getSession)
	// Body example: {"mode":"manual","humidity_threshold":45}
	api.PATCH("/session", h.updateSession)
	api.DELETE("/session", h.endSession)
}

func (h *Handler) registerSimulationRoutes(api *gin.RouterGroup) {
	sim := api.Group("/simulation")
	{
		sim.POST("/run", h.runSimulation)
		sim.GET("/ws", h.simulationStream)
	}
}

func (h *Handler) registerPumpRoutes(api *gin.RouterGroup) {
	pump := api.Group("/pump")
	{
		pump.GET("", h.pumpStatus)
		pump.POST("/on", h.pumpOn)
		pump.POST("/off", h.pumpOff)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
