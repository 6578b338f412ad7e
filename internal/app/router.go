package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleetpay/internal/domain"
	"fleetpay/internal/handler"
	"fleetpay/internal/middleware"
	"fleetpay/internal/service"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	FlowHandler    *handler.FlowHandler
	TripHandler    *handler.TripHandler
	DriverHandler  *handler.DriverHandler
	VehicleHandler *handler.VehicleHandler
	LedgerHandler  *handler.LedgerHandler
	ReportHandler  *handler.ReportHandler
	AccountHandler *handler.AccountHandler
	AccessService  *service.AccessService
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered. Every route
// group is gated on the caller's role: viewers read, editors enter data and
// record payments, admins manage accounts.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	viewer := middleware.RequireRole(deps.AccessService, domain.RoleViewer)
	editor := middleware.RequireRole(deps.AccessService, domain.RoleEditor)
	admin := middleware.RequireRole(deps.AccessService, domain.RoleAdmin)

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Guided entry flow routes.
		flows := v1.Group("/flows", editor)
		{
			flows.POST("/:name/start", deps.FlowHandler.Start)
			flows.POST("/:name/submit", deps.FlowHandler.Submit)
			flows.POST("/:name/back", deps.FlowHandler.Back)
			flows.POST("/:name/confirm", deps.FlowHandler.Confirm)
			flows.POST("/:name/cancel", deps.FlowHandler.Cancel)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.GET("", viewer, deps.TripHandler.GetAll)
			trips.GET("/:id", viewer, deps.TripHandler.GetTrip)
			trips.GET("/:id/downtimes", viewer, deps.TripHandler.GetDowntimes)
			trips.PATCH("/:id", editor, deps.TripHandler.EditTrip)
			trips.POST("/:id/downtimes", editor, deps.TripHandler.AddDowntime)
			trips.POST("/:id/payments", editor, deps.LedgerHandler.ApplyPayment)
			trips.POST("/:id/settle", editor, deps.LedgerHandler.MarkFullyPaid)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.GET("", viewer, deps.DriverHandler.GetAll)
			drivers.GET("/:id", viewer, deps.DriverHandler.GetDriver)
			drivers.POST("", editor, deps.DriverHandler.Register)
			drivers.PUT("/:id/rates", editor, deps.DriverHandler.UpdateRates)
			drivers.POST("/:id/settle", editor, deps.LedgerHandler.SettleDriver)
		}

		// Vehicle routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", viewer, deps.VehicleHandler.GetAll)
			vehicles.GET("/:id", viewer, deps.VehicleHandler.GetVehicle)
			vehicles.POST("", editor, deps.VehicleHandler.Register)
			vehicles.DELETE("/:id", admin, deps.VehicleHandler.Delete)
		}

		// Ledger views.
		ledger := v1.Group("/ledger", viewer)
		{
			ledger.GET("/outstanding", deps.LedgerHandler.Outstanding)
			ledger.GET("/stats", deps.LedgerHandler.Stats)
			ledger.GET("/unpaid", deps.LedgerHandler.Unpaid)
		}

		// CSV reports.
		reports := v1.Group("/reports", viewer)
		{
			reports.GET("/unpaid.csv", deps.ReportHandler.UnpaidTrips)
			reports.GET("/trips.csv", deps.ReportHandler.TripHistory)
			reports.GET("/drivers.csv", deps.ReportHandler.DriverLedger)
		}

		// Account administration.
		accounts := v1.Group("/accounts", admin)
		{
			accounts.GET("", deps.AccountHandler.GetAll)
			accounts.POST("", deps.AccountHandler.Grant)
			accounts.DELETE("/:id", deps.AccountHandler.Revoke)
		}

		v1.GET("/audit", admin, deps.AccountHandler.AuditLog)
	}

	return router
}
