package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	handlerConfig "github.com/iurnickita/bizledger/internal/handler/config"
	loggerConfig "github.com/iurnickita/bizledger/internal/logger/config"
	serviceConfig "github.com/iurnickita/bizledger/internal/service/config"
	storeConfig "github.com/iurnickita/bizledger/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config `yaml:"handler"`
	Service serviceConfig.Config `yaml:"service"`
	Store   storeConfig.Config   `yaml:"store"`
	Logger  loggerConfig.Config  `yaml:"logger"`
}

const (
	defaultServerAddr    = "localhost:8080"
	defaultStoreTimeout  = 5 * time.Second
	defaultLogLevel      = "info"
	defaultRecalcWorkers = 4
)

func defaults() Config {
	var cfg Config
	cfg.Handler.ServerAddr = defaultServerAddr
	cfg.Store.Timeout = defaultStoreTimeout
	cfg.Logger.LogLevel = defaultLogLevel
	cfg.Service.RecalcWorkers = defaultRecalcWorkers
	return cfg
}

// GetConfig reads the process configuration: defaults, then the YAML file,
// then .env and the environment, then command-line flags.
func GetConfig() (Config, error) {
	return Load(os.Args[1:], ".env")
}

// Load is GetConfig over explicit arguments and .env path.
func Load(args []string, envFile string) (Config, error) {
	// Флаги разбираем первыми, чтобы узнать путь к файлу конфигурации
	flags := flag.NewFlagSet("ledger", flag.ContinueOnError)
	var (
		configPath    = flags.String("c", "", "path to YAML config file")
		serverAddr    = flags.String("a", "", "address and port to run server")
		databaseURI   = flags.String("d", "", "postgres connection string")
		storeKind     = flags.String("s", "", "store backend: memory, postgres or redis")
		redisAddr     = flags.String("r", "", "redis address")
		storeTimeout  = flags.Duration("t", 0, "timeout of a single store call")
		logLevel      = flags.String("l", "", "log level")
		tokenSecret   = flags.String("k", "", "JWT secret, empty disables auth")
		recalcWorkers = flags.Int("w", 0, "parallel workers for batch recalculation")
		luhn          = flags.Bool("luhn", false, "require Luhn-valid numeric invoice ids")
	)
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	env, err := readEnv(envFile)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	path := *configPath
	if path == "" {
		path = env("CONFIG")
	}
	if path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.Handler.ServerAddr = *serverAddr
		case "d":
			cfg.Store.DBDsn = *databaseURI
		case "s":
			cfg.Store.Kind = *storeKind
		case "r":
			cfg.Store.RedisAddr = *redisAddr
		case "t":
			cfg.Store.Timeout = *storeTimeout
		case "l":
			cfg.Logger.LogLevel = *logLevel
		case "k":
			cfg.Handler.TokenSecret = *tokenSecret
		case "w":
			cfg.Service.RecalcWorkers = *recalcWorkers
		case "luhn":
			cfg.Service.LuhnInvoiceNumbers = *luhn
		}
	})

	return cfg, nil
}

// readEnv returns a lookup over the environment with .env values underneath.
func readEnv(envFile string) (func(string) string, error) {
	dotenv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = values
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, env func(string) string) error {
	setString := func(key string, dst *string) {
		if v := env(key); v != "" {
			*dst = v
		}
	}
	setString("RUN_ADDRESS", &cfg.Handler.ServerAddr)
	setString("TOKEN_SECRET", &cfg.Handler.TokenSecret)
	setString("DATABASE_URI", &cfg.Store.DBDsn)
	setString("STORE_KIND", &cfg.Store.Kind)
	setString("REDIS_ADDR", &cfg.Store.RedisAddr)
	setString("REDIS_PASSWORD", &cfg.Store.RedisPassword)
	setString("LOG_LEVEL", &cfg.Logger.LogLevel)

	if v := env("CORS_ORIGINS"); v != "" {
		cfg.Handler.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.Handler.CORSOrigins = append(cfg.Handler.CORSOrigins, origin)
			}
		}
	}
	if v := env("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse REDIS_DB: %w", err)
		}
		cfg.Store.RedisDB = db
	}
	if v := env("STORE_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse STORE_TIMEOUT: %w", err)
		}
		cfg.Store.Timeout = timeout
	}
	if v := env("RECALC_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse RECALC_WORKERS: %w", err)
		}
		cfg.Service.RecalcWorkers = workers
	}
	if v := env("LUHN_INVOICE_NUMBERS"); v != "" {
		luhn, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse LUHN_INVOICE_NUMBERS: %w", err)
		}
		cfg.Service.LuhnInvoiceNumbers = luhn
	}
	return nil
}
