package config

const (
	EnvPrefix = "HOTELOPS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "HOTELOPS_APP_ENV"
	EnvPort     = "HOTELOPS_APP_PORT"
	EnvLogLevel = "HOTELOPS_LOG_LEVEL"

	EnvDBDSN  = "HOTELOPS_DB_DSN"
	EnvDBHost = "HOTELOPS_DB_HOST"
	EnvDBUser = "HOTELOPS_DB_USER"
	EnvDBName = "HOTELOPS_DB_NAME"

	EnvRedisURL  = "HOTELOPS_REDIS_URL"
	EnvUseSQLite = "HOTELOPS_USE_SQLITE"

	EnvHotelFloors         = "HOTELOPS_HOTEL_FLOORS"
	EnvTasksStagingBackend = "HOTELOPS_TASKS_STAGING_BACKEND"

	StagingBackendMemory = "memory"
	StagingBackendRedis  = "redis"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
