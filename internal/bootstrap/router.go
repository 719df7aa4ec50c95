package bootstrap

import (
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/config"
	httpapi "github.com/GoSim-25-26J-441/folio-backend/internal/api/http"
	apimw "github.com/GoSim-25-26J-441/folio-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/folio-backend/internal/auth"
	authmw "github.com/GoSim-25-26J-441/folio-backend/internal/auth/middleware"
	portfolioshttp "github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	Logger      *zap.Logger
	Stores      *Stores
	Redis       *redis.Client
	Verifier    authmw.TokenVerifier // required when AUTH_MODE=firebase
	Portfolios  *portfolioshttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestIDMiddleware(dep.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var dbPinger, redisStatus httpapi.Pinger
	if dep.Stores != nil && dep.Stores.DB != nil {
		dbPinger = dep.Stores.DB
	}
	if dep.Redis != nil {
		redisStatus = redisPinger{client: dep.Redis}
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Config.App.Version, dbPinger, redisStatus)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	limiter := apimw.NewIPRateLimiter(dep.Config.RateLimit.RPS, dep.Config.RateLimit.Burst)
	dep.Portfolios.RegisterPublic(api, apimw.RateLimit(limiter))

	owner := api.Group("")
	if dep.Config.Firebase.AuthMode == "header" {
		owner.Use(auth.HeaderUser())
	} else {
		owner.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	}
	owner.Use(auth.WithUser(dep.Stores.Users, dep.Logger))

	owner.GET("/me", auth.Me)
	dep.Portfolios.RegisterOwner(owner)

	return r
}
