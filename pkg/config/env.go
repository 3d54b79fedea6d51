package config

// EnvPrefix is passed to envconfig; explicit envconfig tags take precedence.
const EnvPrefix = "PHARMTRACK"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "PHARMTRACK_APP_ENV"
	EnvPort     = "PHARMTRACK_APP_PORT"
	EnvDBDSN    = "PHARMTRACK_DB_DSN"
	EnvDBHost   = "PHARMTRACK_DB_HOST"
	EnvDBUser   = "PHARMTRACK_DB_USER"
	EnvDBName   = "PHARMTRACK_DB_NAME"
	EnvRedisURL = "PHARMTRACK_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
