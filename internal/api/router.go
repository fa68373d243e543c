package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"droneWatch/internal/auth"
	"droneWatch/repository"
)

// New builds the HTTP router with all routes mounted under /api/v1.
func New(log *zap.SugaredLogger, accounts repository.AccountRepositoryI, drones repository.DroneRepositoryI, tokens *auth.TokenService, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log), Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "dronewatch"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := NewUserHandler(accounts, tokens, log, production)
	dronesH := NewDroneHandler(drones, accounts, tokens, log)

	v1 := r.Group("/api/v1")

	u := v1.Group("/user")
	u.POST("/signup", users.Signup)
	u.POST("/signin", users.Signin)
	u.GET("/logout", users.Logout)
	authed := u.Group("", RequireAuth(tokens, accounts))
	authed.GET("/me", users.Me)
	authed.GET("/admin/get-users", users.AdminListUsers)

	d := v1.Group("/drone")
	d.POST("/verify", dronesH.Verify)
	d.GET("/get-drone", dronesH.GetDrone)
	d.GET("/get-all-drones", dronesH.ListDrones)
	d.POST("/register-drone", dronesH.Register)
	d.POST("/receive-drone-data", dronesH.ReceiveTelemetry)

	return r
}
