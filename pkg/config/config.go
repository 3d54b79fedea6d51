package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	SMTP         SMTPConfig
	Notify       NotifyConfig
	Password     PasswordConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PHARMTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"PHARMTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PHARMTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHARMTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PHARMTRACK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PHARMTRACK_DB_DSN"`
	Driver string `envconfig:"PHARMTRACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PHARMTRACK_DB_HOST"`
	LegacyPort     int    `envconfig:"PHARMTRACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PHARMTRACK_DB_USER"`
	LegacyPassword string `envconfig:"PHARMTRACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"PHARMTRACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"PHARMTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PHARMTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PHARMTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PHARMTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHARMTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PHARMTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PHARMTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"PHARMTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHARMTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHARMTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PHARMTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PHARMTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHARMTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PHARMTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PHARMTRACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PHARMTRACK_AUTO_MIGRATE" default:"false"`
}

// SMTPConfig configures the outbound mail transport. When Host is empty the
// mailer falls back to logging digests instead of sending them.
type SMTPConfig struct {
	Host        string        `envconfig:"PHARMTRACK_SMTP_HOST"`
	Port        int           `envconfig:"PHARMTRACK_SMTP_PORT" default:"587"`
	Username    string        `envconfig:"PHARMTRACK_SMTP_USERNAME"`
	Password    string        `envconfig:"PHARMTRACK_SMTP_PASSWORD"`
	DefaultFrom string        `envconfig:"PHARMTRACK_SMTP_FROM" default:"noreply@pharmtrack.ru"`
	Timeout     time.Duration `envconfig:"PHARMTRACK_SMTP_TIMEOUT" default:"30s"`
}

type NotifyConfig struct {
	SiteBaseURL string        `envconfig:"PHARMTRACK_SITE_BASE_URL" default:"http://localhost:8000"`
	Interval    time.Duration `envconfig:"PHARMTRACK_NOTIFY_INTERVAL" default:"1h"`
	LockTTL     time.Duration `envconfig:"PHARMTRACK_NOTIFY_LOCK_TTL" default:"2h"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PHARMTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PHARMTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PHARMTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PHARMTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PHARMTRACK_ARGON_KEY_LEN" default:"32"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PHARMTRACK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PHARMTRACK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PHARMTRACK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AvailabilityTopic        string `envconfig:"PHARMTRACK_PUBSUB_AVAILABILITY_TOPIC" default:"pt-availability-events"`
	AvailabilitySubscription string `envconfig:"PHARMTRACK_PUBSUB_AVAILABILITY_SUBSCRIPTION"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
