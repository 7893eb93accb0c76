package http

import (
	"kodbank/internal/config"
	"kodbank/internal/http/handlers"
	"kodbank/internal/http/middleware"
	"kodbank/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps bundles what the router needs beyond the handlers themselves.
type Deps struct {
	Handler   *handlers.Handler
	Health    *handlers.HealthHandler
	Readiness middleware.Readiness
	Hub       *ws.Hub
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, d Deps) {
	h := d.Handler

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ws/market", ws.HandleMarket(d.Hub, h.Sessions, cfg.AllowedOrigin))

	api := r.Group("/api")
	api.Use(middleware.RequestLogger())
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	api.Use(middleware.StoreReady(d.Readiness))

	api.GET("/market/prices", h.Prices)
	api.GET("/reward/wheel", h.WheelInfo)

	auth := api.Group("")
	auth.Use(middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow))
	{
		auth.POST("/register", h.Register)
		auth.GET("/check-username", h.CheckUsername)
		auth.POST("/resend-otp", h.ResendOTP)
		auth.POST("/verify-otp", h.VerifyOTP)
		auth.POST("/setup-mpin", h.SetupMPIN)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(h.Sessions))
	{
		action := func(name string) gin.HandlerFunc {
			return middleware.ActionRateLimit(name, cfg.ActionRateLimit, cfg.ActionRateWindow)
		}

		protected.POST("/verify-mpin", h.VerifyMPIN)
		protected.GET("/dashboard", h.GetDashboard)

		protected.POST("/reward/spin", action("spin"), h.Spin)
		protected.POST("/reward/redeem", action("redeem"), h.Redeem)
		protected.POST("/reward/claim", action("claim"), h.Claim)

		protected.POST("/transfer", action("transfer"), h.Transfer)
		protected.POST("/invest/buy", action("buy"), h.Buy)
		protected.POST("/invest/sell", action("sell"), h.Sell)
		protected.POST("/loans/apply", action("loan"), h.ApplyLoan)

		protected.GET("/users/list", h.ListUsers)
		protected.GET("/users/search", h.SearchUsers)
	}
}
