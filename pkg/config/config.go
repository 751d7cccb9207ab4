package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Orders        OrdersConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"POS_APP_ENV" required:"true"`
	Port            string        `envconfig:"POS_APP_PORT" default:"5000"`
	LogLevel        string        `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"POS_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"POS_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"POS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"POS_DB_DSN"`
	Driver string `envconfig:"POS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POS_DB_HOST"`
	LegacyPort     int    `envconfig:"POS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POS_DB_USER"`
	LegacyPassword string `envconfig:"POS_DB_PASSWORD"`
	LegacyName     string `envconfig:"POS_DB_NAME"`
	LegacySSLMode  string `envconfig:"POS_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"POS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"POS_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret                 string `envconfig:"POS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"POS_JWT_ISSUER" default:"pos-backend"`
	ExpirationMinutes      int    `envconfig:"POS_JWT_EXPIRATION_MINUTES" default:"720"`
	RefreshTokenTTLMinutes int    `envconfig:"POS_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"POS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"POS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmployeeLimit int           `envconfig:"POS_AUTH_RATE_LIMIT_LOGIN_EMPLOYEE_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"POS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"POS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"POS_AUTO_MIGRATE" default:"false"`
}

type OrdersConfig struct {
	EnforceComposition bool          `envconfig:"POS_ORDERS_ENFORCE_COMPOSITION" default:"true"`
	IdempotencyTTL     time.Duration `envconfig:"POS_ORDERS_IDEMPOTENCY_TTL" default:"168h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POS_CORS_ALLOWED_ORIGINS"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"POS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic           string `envconfig:"POS_PUBSUB_ORDERS_TOPIC" default:"pos-orders"`
	InventoryTopic        string `envconfig:"POS_PUBSUB_INVENTORY_TOPIC" default:"pos-inventory"`
	InventorySubscription string `envconfig:"POS_PUBSUB_INVENTORY_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"POS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"POS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"POS_OUTBOX_MAX_ATTEMPTS" default:"10"`

	ConsumerDedupeTTL time.Duration `envconfig:"POS_OUTBOX_CONSUMER_DEDUPE_TTL" default:"24h"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"POS_CRON_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"POS_CRON_LOCK_TTL" default:"55m"`
	OutboxRetention time.Duration `envconfig:"POS_CRON_OUTBOX_RETENTION" default:"720h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = defaultSQLiteDSN
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
