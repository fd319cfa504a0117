package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
	"github.com/sirupsen/logrus"
)

// SetGinMode picks the gin mode for APP_ENV and routes gin's own output
// through the process logger.
func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
	gin.DefaultWriter = logging.Base().Writer()
	gin.DefaultErrorWriter = logging.Base().WriterLevel(logrus.ErrorLevel)
}
