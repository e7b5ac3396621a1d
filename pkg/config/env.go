package config

const (
	EnvPrefix = "GEARSHARE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "GEARSHARE_APP_ENV"
	EnvPort         = "GEARSHARE_APP_PORT"
	EnvLogLevel     = "GEARSHARE_LOG_LEVEL"
	EnvLogWarnStack = "GEARSHARE_LOG_WARN_STACK"

	EnvDBDSN      = "GEARSHARE_DB_DSN"
	EnvDBDriver   = "GEARSHARE_DB_DRIVER"
	EnvDBHost     = "GEARSHARE_DB_HOST"
	EnvDBPort     = "GEARSHARE_DB_PORT"
	EnvDBUser     = "GEARSHARE_DB_USER"
	EnvDBPassword = "GEARSHARE_DB_PASSWORD"
	EnvDBName     = "GEARSHARE_DB_NAME"
	EnvDBSSLMode  = "GEARSHARE_DB_SSLMODE"

	EnvRedisURL = "GEARSHARE_REDIS_URL"

	EnvJWTSecret  = "GEARSHARE_JWT_SECRET"
	EnvJWTIssuer  = "GEARSHARE_JWT_ISSUER"
	EnvJWTExpMins = "GEARSHARE_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite     = "GEARSHARE_USE_SQLITE"
	EnvAutoMigrate   = "GEARSHARE_AUTO_MIGRATE"
	EnvPublishEvents = "GEARSHARE_PUBLISH_EVENTS"

	EnvGCPProjectID      = "GEARSHARE_GCP_PROJECT_ID"
	EnvGCPCredentials    = "GEARSHARE_GCP_CREDENTIALS_JSON"
	EnvGCSBucket         = "GEARSHARE_GCS_BUCKET_NAME"
	EnvGCSCacheControl   = "GEARSHARE_GCS_CACHE_CONTROL"
	EnvMediaMaxBytes     = "GEARSHARE_MEDIA_MAX_UPLOAD_BYTES"
	EnvPubSubBookingsTop = "GEARSHARE_PUBSUB_BOOKINGS_TOPIC"
	EnvCORSOrigins       = "GEARSHARE_CORS_ALLOWED_ORIGINS"
	EnvCronInterval      = "GEARSHARE_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
