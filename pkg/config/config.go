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
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Hotel        HotelConfig
	Tasks        TasksConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Tasks.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HOTELOPS_APP_ENV" required:"true"`
	Port         string `envconfig:"HOTELOPS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"HOTELOPS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"HOTELOPS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"HOTELOPS_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"HOTELOPS_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"HOTELOPS_DB_DSN"`
	SQLitePath string `envconfig:"HOTELOPS_DB_SQLITE_PATH" default:"hotelops.db"`

	LegacyHost     string `envconfig:"HOTELOPS_DB_HOST"`
	LegacyPort     int    `envconfig:"HOTELOPS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HOTELOPS_DB_USER"`
	LegacyPassword string `envconfig:"HOTELOPS_DB_PASSWORD"`
	LegacyName     string `envconfig:"HOTELOPS_DB_NAME"`
	LegacySSLMode  string `envconfig:"HOTELOPS_DB_SSLMODE" default:"disable"`

	// Serializable runs every coordinator transaction at SERIALIZABLE isolation.
	Serializable bool `envconfig:"HOTELOPS_DB_SERIALIZABLE" default:"true"`

	MaxOpenConns    int           `envconfig:"HOTELOPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOTELOPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOTELOPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOTELOPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HOTELOPS_REDIS_URL"`
	Address      string        `envconfig:"HOTELOPS_REDIS_ADDR"`
	Password     string        `envconfig:"HOTELOPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOTELOPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOTELOPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOTELOPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOTELOPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOTELOPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOTELOPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HOTELOPS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HOTELOPS_AUTO_MIGRATE" default:"false"`
	SeedRooms   bool `envconfig:"HOTELOPS_SEED_ROOMS" default:"true"`
}

type HotelConfig struct {
	Floors        int `envconfig:"HOTELOPS_HOTEL_FLOORS" default:"8"`
	RoomsPerFloor int `envconfig:"HOTELOPS_HOTEL_ROOMS_PER_FLOOR" default:"10"`
}

type TasksConfig struct {
	StagingBackend string        `envconfig:"HOTELOPS_TASKS_STAGING_BACKEND" default:"memory"`
	StagingTTL     time.Duration `envconfig:"HOTELOPS_TASKS_STAGING_TTL" default:"72h"`
}

func (t TasksConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(t.StagingBackend)) {
	case StagingBackendMemory, StagingBackendRedis:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvTasksStagingBackend, StagingBackendMemory, StagingBackendRedis)
	}
}

// UsesRedis reports whether staged consumptions are kept in Redis.
func (t TasksConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(t.StagingBackend), StagingBackendRedis)
}

type GCPConfig struct {
	ProjectID string `envconfig:"HOTELOPS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	EventsTopic string `envconfig:"HOTELOPS_PUBSUB_EVENTS_TOPIC" default:"hotelops-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HOTELOPS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HOTELOPS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HOTELOPS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
