package config

const (
	EnvPrefix = "soukly"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "SOUKLY_APP_ENV"
	EnvPort     = "SOUKLY_APP_PORT"
	EnvDBDSN    = "SOUKLY_DB_DSN"
	EnvDBHost   = "SOUKLY_DB_HOST"
	EnvDBUser   = "SOUKLY_DB_USER"
	EnvDBName   = "SOUKLY_DB_NAME"
	EnvRedisURL = "SOUKLY_REDIS_URL"

	EnvJWTSecret = "SOUKLY_JWT_SECRET"
	EnvJWTIssuer = "SOUKLY_JWT_ISSUER"

	EnvCommerceBaseURL = "SOUKLY_COMMERCE_BASE_URL"

	EnvGatewayBaseURL       = "SOUKLY_GATEWAY_BASE_URL"
	EnvGatewayMerchantID    = "SOUKLY_GATEWAY_MERCHANT_ID"
	EnvGatewayTerminalID    = "SOUKLY_GATEWAY_TERMINAL_ID"
	EnvGatewaySecureHashKey = "SOUKLY_GATEWAY_SECURE_HASH_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
