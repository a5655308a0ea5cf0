package config

// EnvPrefix scopes every envconfig lookup for this service.
const EnvPrefix = "INDUSTRO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "INDUSTRO_APP_ENV"
	EnvPort                   = "INDUSTRO_APP_PORT"
	EnvDBDSN                  = "INDUSTRO_DB_DSN"
	EnvDBHost                 = "INDUSTRO_DB_HOST"
	EnvDBUser                 = "INDUSTRO_DB_USER"
	EnvDBName                 = "INDUSTRO_DB_NAME"
	EnvRedisURL               = "INDUSTRO_REDIS_URL"
	EnvJWTSecret              = "INDUSTRO_JWT_SECRET"
	EnvJWTIssuer              = "INDUSTRO_JWT_ISSUER"
	EnvJWTExpMins             = "INDUSTRO_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "INDUSTRO_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
