package app

import (
	"time"

	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
	"github.com/craftbase/appbuilder-backend/internal/utils"
)

type Config struct {
	Port         string
	ServiceName  string
	Environment  string
	Version      string
	JWTSecretKey string
	AuthDisabled bool
	LockBackend  string // "local" or "redis"
	LockMaxWait  time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	lockWaitSeconds := utils.GetEnvAsInt("SCOPE_LOCK_MAX_WAIT", 10, log)
	return Config{
		Port:         utils.GetEnv("PORT", "8080", log),
		ServiceName:  utils.GetEnv("SERVICE_NAME", "appbuilder-backend", log),
		Environment:  utils.GetEnv("ENVIRONMENT", "development", log),
		Version:      utils.GetEnv("SERVICE_VERSION", "dev", log),
		JWTSecretKey: utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AuthDisabled: utils.GetEnvAsBool("AUTH_DISABLED", false, log),
		LockBackend:  utils.GetEnv("SCOPE_LOCK_BACKEND", "local", log),
		LockMaxWait:  time.Duration(lockWaitSeconds) * time.Second,
	}
}
