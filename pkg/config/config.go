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
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	CORS          CORSConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GEARSHARE_APP_ENV" required:"true"`
	Port         string `envconfig:"GEARSHARE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GEARSHARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GEARSHARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GEARSHARE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GEARSHARE_DB_DSN"`
	Driver string `envconfig:"GEARSHARE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GEARSHARE_DB_HOST"`
	Port     int    `envconfig:"GEARSHARE_DB_PORT" default:"5432"`
	User     string `envconfig:"GEARSHARE_DB_USER"`
	Password string `envconfig:"GEARSHARE_DB_PASSWORD"`
	Name     string `envconfig:"GEARSHARE_DB_NAME"`
	SSLMode  string `envconfig:"GEARSHARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GEARSHARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GEARSHARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GEARSHARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GEARSHARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"GEARSHARE_REDIS_URL"`
	Address      string        `envconfig:"GEARSHARE_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"GEARSHARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GEARSHARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GEARSHARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GEARSHARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GEARSHARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GEARSHARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GEARSHARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GEARSHARE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GEARSHARE_JWT_ISSUER" default:"gearshare"`
	ExpirationMinutes int    `envconfig:"GEARSHARE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the lifetime of issued identity tokens.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GEARSHARE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GEARSHARE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GEARSHARE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GEARSHARE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GEARSHARE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"GEARSHARE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"GEARSHARE_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"GEARSHARE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"GEARSHARE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"GEARSHARE_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"GEARSHARE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"GEARSHARE_USE_SQLITE" default:"false"`
	AutoMigrate   bool `envconfig:"GEARSHARE_AUTO_MIGRATE" default:"false"`
	PublishEvents bool `envconfig:"GEARSHARE_PUBLISH_EVENTS" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GEARSHARE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GEARSHARE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GEARSHARE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName   string `envconfig:"GEARSHARE_GCS_BUCKET_NAME" default:"uploads"`
	CacheControl string `envconfig:"GEARSHARE_GCS_CACHE_CONTROL" default:"public, max-age=3600"`
}

type MediaConfig struct {
	MaxUploadBytes int64 `envconfig:"GEARSHARE_MEDIA_MAX_UPLOAD_BYTES" default:"1000000"`
}

type PubSubConfig struct {
	BookingsTopic string `envconfig:"GEARSHARE_PUBSUB_BOOKINGS_TOPIC" default:"gearshare-booking-events"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GEARSHARE_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GEARSHARE_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"GEARSHARE_CRON_LOCK_TTL" default:"55m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:gearshare.db?cache=shared&_foreign_keys=on"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range legacyDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
