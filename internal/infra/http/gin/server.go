package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"autorent/internal/domain/user"
	"autorent/internal/infra/config"
	"autorent/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Rental         RentalHTTP
	Car            CarHTTP
	User           UserHTTP
	Review         ReviewHTTP
	AuthMiddleware gin.HandlerFunc
}

// NewServer wires the full route tree. Routes are grouped by the weakest
// role that may call them: /c for clients, /m for managers, /a for admins.
func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/sign-up", h.Auth.SignUp)
		api.POST("/auth/sign-in", h.Auth.SignIn)
		api.POST("/auth/sign-out", h.Auth.SignOut)
		api.GET("/auth/me", h.Auth.Me)
	}

	client := api.Group("/c", requireRole(user.RoleClient))
	if h.Car != nil {
		client.GET("/cars", h.Car.Catalog)
		client.GET("/cars/:id", h.Car.CatalogGet)
	}
	if h.Rental != nil {
		client.GET("/cars/:id/availability", h.Rental.Availability)
		client.GET("/cars/:id/schedule", h.Rental.Schedule)
		client.POST("/rentals/quote", h.Rental.Quote)
		client.POST("/rentals", h.Rental.Create)
		client.GET("/rentals", h.Rental.ListOwn)
		client.GET("/rentals/:id", h.Rental.GetOwn)
		client.POST("/rentals/:id/cancel", h.Rental.Cancel)
	}
	if h.Review != nil {
		client.GET("/cars/:id/reviews", h.Review.ListForCar)
		client.POST("/reviews", h.Review.Submit)
		client.PUT("/reviews/:id", h.Review.Update)
		client.DELETE("/reviews/:id", h.Review.DeleteOwn)
	}
	if h.User != nil {
		client.GET("/profile", h.User.GetSelf)
		client.PUT("/profile", h.User.UpdateSelf)
		client.DELETE("/profile", h.User.DeleteSelf)
	}

	manager := api.Group("/m", requireRole(user.RoleManager))
	if h.Car != nil {
		manager.GET("/cars", h.Car.List)
		manager.POST("/cars", h.Car.Create)
		manager.GET("/cars/:id", h.Car.Get)
		manager.PUT("/cars/:id", h.Car.Update)
		manager.DELETE("/cars/:id", h.Car.Delete)
		manager.POST("/cars/:id/photo", h.Car.UploadPhoto)
	}
	if h.Rental != nil {
		manager.GET("/rentals", h.Rental.List)
		manager.POST("/rentals/for/:user_id", h.Rental.CreateFor)
		manager.GET("/rentals/:id", h.Rental.Get)
		manager.PATCH("/rentals/:id/status", h.Rental.SetStatus)
		manager.DELETE("/rentals/:id", h.Rental.Delete)
	}
	if h.Review != nil {
		manager.GET("/reviews", h.Review.List)
		manager.DELETE("/reviews/:id", h.Review.Delete)
	}

	admin := api.Group("/a", requireRole(user.RoleAdmin))
	if h.User != nil {
		admin.GET("/users", h.User.List)
		admin.POST("/users", h.User.Create)
		admin.GET("/users/:id", h.User.Get)
		admin.PUT("/users/:id", h.User.Update)
		admin.DELETE("/users/:id", h.User.Delete)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
