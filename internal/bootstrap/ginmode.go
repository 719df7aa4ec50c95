package bootstrap

import (
	"github.com/GoSim-25-26J-441/folio-backend/config"
	"github.com/gin-gonic/gin"
)

func SetGinMode(cfg *config.AppConfig) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}
