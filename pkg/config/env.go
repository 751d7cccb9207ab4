package config

// EnvPrefix is handed to envconfig; every field also carries its full POS_* name.
const EnvPrefix = "POS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "POS_APP_ENV"
	EnvPort     = "POS_APP_PORT"
	EnvLogLevel = "POS_LOG_LEVEL"

	EnvDBDSN  = "POS_DB_DSN"
	EnvDBHost = "POS_DB_HOST"
	EnvDBPort = "POS_DB_PORT"
	EnvDBUser = "POS_DB_USER"
	EnvDBPass = "POS_DB_PASSWORD"
	EnvDBName = "POS_DB_NAME"

	EnvRedisURL = "POS_REDIS_URL"

	EnvJWTSecret              = "POS_JWT_SECRET"
	EnvJWTIssuer              = "POS_JWT_ISSUER"
	EnvJWTExpMins             = "POS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "POS_REFRESH_TOKEN_TTL_MINUTES"

	EnvUseSQLite          = "POS_USE_SQLITE"
	EnvEnforceComposition = "POS_ORDERS_ENFORCE_COMPOSITION"
	EnvCORSOrigins        = "POS_CORS_ALLOWED_ORIGINS"

	EnvGCPProjectID         = "POS_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic    = "POS_PUBSUB_ORDERS_TOPIC"
	EnvPubSubInventoryTopic = "POS_PUBSUB_INVENTORY_TOPIC"

	EnvPubSubInventorySubscription = "POS_PUBSUB_INVENTORY_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

const defaultSQLiteDSN = "file:pos.db?cache=shared&_foreign_keys=on"
