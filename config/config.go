package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	// Skip disables the access gate. Never allowed in production.
	Skip       bool          `mapstructure:"skip"`
	Realm      string        `mapstructure:"realm"`
	JWTSecret  string        `mapstructure:"jwtsecret"`
	TokenTTL   time.Duration `mapstructure:"tokenttl"`
	BcryptCost int           `mapstructure:"bcryptcost"`
}

type AdminConfig struct {
	Email     string `mapstructure:"email"`
	Password  string `mapstructure:"password"`
	FirstName string `mapstructure:"firstname"`
	LastName  string `mapstructure:"lastname"`
}

type Config struct {
	AppName       string      `mapstructure:"appname"`
	Env           string      `mapstructure:"env"`
	Port          string      `mapstructure:"port"`
	StoreDriver   string      `mapstructure:"storedriver"`
	PositionIndex string      `mapstructure:"positionindex"`
	APIBaseURL    string      `mapstructure:"apibaseurl"`
	CORSOrigins   []string    `mapstructure:"corsorigins"`
	LogLevel      string      `mapstructure:"loglevel"`
	LogFormat     string      `mapstructure:"logformat"`
	Mongo         MongoConfig `mapstructure:"mongo"`
	Redis         RedisConfig `mapstructure:"redis"`
	Auth          AuthConfig  `mapstructure:"auth"`
	Admin         AdminConfig `mapstructure:"admin"`
}

// env names kept compatible with the deployment scripts.
var envBindings = map[string]string{
	"appname":         "APP_NAME",
	"env":             "APP_ENV",
	"port":            "PORT",
	"storedriver":     "STORE_DRIVER",
	"positionindex":   "POSITION_INDEX",
	"apibaseurl":      "API_BASE_URL",
	"corsorigins":     "CORS_ALLOWED_ORIGINS",
	"loglevel":        "LOG_LEVEL",
	"logformat":       "LOG_FORMAT",
	"mongo.uri":       "MONGODB_URI",
	"mongo.database":  "DB_NAME",
	"redis.addr":      "REDIS_ADDR",
	"redis.password":  "REDIS_PASSWORD",
	"redis.db":        "REDIS_DB",
	"auth.skip":       "SKIP_AUTHENTICATION",
	"auth.realm":      "AUTH_REALM",
	"auth.jwtsecret":  "JWT_SECRET",
	"auth.tokenttl":   "JWT_TTL",
	"auth.bcryptcost": "BCRYPT_COST",
	"admin.email":     "ADMIN_EMAIL",
	"admin.password":  "ADMIN_PASSWORD",
	"admin.firstname": "ADMIN_FIRST_NAME",
	"admin.lastname":  "ADMIN_LAST_NAME",
}

// Load reads .env (if present), an optional config.yaml and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.PositionIndex == "" {
		cfg.PositionIndex = cfg.StoreDriver
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:" + cfg.Port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appname", "friends-server")
	v.SetDefault("env", "development")
	v.SetDefault("port", "3333")
	v.SetDefault("storedriver", DriverMongo)
	v.SetDefault("positionindex", "")
	v.SetDefault("apibaseurl", "")
	v.SetDefault("corsorigins", []string{"*"})
	v.SetDefault("loglevel", "")
	v.SetDefault("logformat", "")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "friends")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.skip", false)
	v.SetDefault("auth.realm", "friends")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", "24h")
	v.SetDefault("auth.bcryptcost", 10)

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.firstname", "Ad")
	v.SetDefault("admin.lastname", "Admin")
}

// Validate rejects combinations the server cannot run with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.PositionIndex {
	case DriverMongo:
		if c.StoreDriver != DriverMongo {
			return errors.New("POSITION_INDEX=mongo requires STORE_DRIVER=mongo")
		}
	case DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("POSITION_INDEX=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown POSITION_INDEX %q", c.PositionIndex)
	}
	if c.Auth.Skip && c.IsProduction() {
		return errors.New("SKIP_AUTHENTICATION is not allowed in production")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be within [4,31], got %d", c.Auth.BcryptCost)
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		return errors.New("ADMIN_EMAIL requires ADMIN_PASSWORD")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// TokensEnabled reports whether bearer tokens are issued and accepted.
func (c *Config) TokensEnabled() bool {
	return c.Auth.JWTSecret != ""
}
