package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Password      PasswordConfig
	Session       SessionConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"TRIPNEST_APP_ENV" required:"true"`
	Port         string `envconfig:"TRIPNEST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TRIPNEST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRIPNEST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRIPNEST_DB_DSN"`
	Driver string `envconfig:"TRIPNEST_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TRIPNEST_DB_HOST"`
	Port     int    `envconfig:"TRIPNEST_DB_PORT" default:"5432"`
	User     string `envconfig:"TRIPNEST_DB_USER"`
	Password string `envconfig:"TRIPNEST_DB_PASSWORD"`
	Name     string `envconfig:"TRIPNEST_DB_NAME"`
	SSLMode  string `envconfig:"TRIPNEST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRIPNEST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRIPNEST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRIPNEST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRIPNEST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRIPNEST_REDIS_URL"`
	Address      string        `envconfig:"TRIPNEST_REDIS_ADDR"`
	Password     string        `envconfig:"TRIPNEST_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRIPNEST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRIPNEST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRIPNEST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRIPNEST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRIPNEST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRIPNEST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TRIPNEST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TRIPNEST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TRIPNEST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TRIPNEST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TRIPNEST_ARGON_KEY_LEN" default:"32"`
}

// SessionConfig holds optional lifetimes for the two cookie planes. Zero means
// the session never expires; validation treats a missing expiry as valid
// forever.
type SessionConfig struct {
	UserSessionTTL   time.Duration `envconfig:"TRIPNEST_USER_SESSION_TTL" default:"0"`
	MemberSessionTTL time.Duration `envconfig:"TRIPNEST_MEMBER_SESSION_TTL" default:"0"`
	CookieSecure     bool          `envconfig:"TRIPNEST_SESSION_COOKIE_SECURE" default:"false"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TRIPNEST_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TRIPNEST_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TRIPNEST_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TRIPNEST_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TRIPNEST_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TRIPNEST_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRIPNEST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRIPNEST_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || strings.EqualFold(db.Driver, "sqlite") {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"TRIPNEST_DB_HOST": db.Host,
		"TRIPNEST_DB_USER": db.User,
		"TRIPNEST_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either TRIPNEST_DB_DSN or %s are required", strings.Join(missing, ", "))
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
