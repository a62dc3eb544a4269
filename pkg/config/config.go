package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable consumed by the service.
	EnvPrefix = "GYMPULSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GYMPULSE_DB_DSN"
	EnvDBHost = "GYMPULSE_DB_HOST"
	EnvDBUser = "GYMPULSE_DB_USER"
	EnvDBName = "GYMPULSE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Dashboard     DashboardConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"GYMPULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"GYMPULSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GYMPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GYMPULSE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"GYMPULSE_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GYMPULSE_DB_DSN"`
	Driver string `envconfig:"GYMPULSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GYMPULSE_DB_HOST"`
	LegacyPort     int    `envconfig:"GYMPULSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GYMPULSE_DB_USER"`
	LegacyPassword string `envconfig:"GYMPULSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GYMPULSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GYMPULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GYMPULSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GYMPULSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GYMPULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GYMPULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GYMPULSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GYMPULSE_REDIS_ADDR"`
	Password     string        `envconfig:"GYMPULSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GYMPULSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GYMPULSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GYMPULSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GYMPULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GYMPULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GYMPULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GYMPULSE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GYMPULSE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GYMPULSE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GYMPULSE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GYMPULSE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GYMPULSE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GYMPULSE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GYMPULSE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GYMPULSE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GYMPULSE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GYMPULSE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GYMPULSE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GYMPULSE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GYMPULSE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// DashboardConfig tunes the metrics cache and the realtime refresh loop.
type DashboardConfig struct {
	CacheTTL            time.Duration `envconfig:"GYMPULSE_DASHBOARD_CACHE_TTL" default:"30s"`
	RefreshInterval     time.Duration `envconfig:"GYMPULSE_DASHBOARD_REFRESH_INTERVAL" default:"1m"`
	FallbackInterval    time.Duration `envconfig:"GYMPULSE_DASHBOARD_FALLBACK_INTERVAL" default:"10m"`
	InitialRefreshDelay time.Duration `envconfig:"GYMPULSE_DASHBOARD_INITIAL_REFRESH_DELAY" default:"10s"`
	ExpiringSoonWindow  time.Duration `envconfig:"GYMPULSE_DASHBOARD_EXPIRING_SOON_WINDOW" default:"72h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GYMPULSE_CRON_INTERVAL" default:"1h"`
	LockKey  string        `envconfig:"GYMPULSE_CRON_LOCK_KEY" default:"gympulse:cron:lock"`
	LockTTL  time.Duration `envconfig:"GYMPULSE_CRON_LOCK_TTL" default:"55m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GYMPULSE_AUTO_MIGRATE" default:"false"`
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
