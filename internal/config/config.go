package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/roach88/sift/internal/logger"
)

const (
	// DebugMode indicates service mode is debug.
	DebugMode = "debug"
	// TestMode indicates service mode is test.
	TestMode = "test"
	// ReleaseMode indicates service mode is release.
	ReleaseMode = "release"
)

// Drivers accepted in SIFT_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	ServiceName string
	Environment string // debug, test, release
	LogLevel    string

	Driver string
	DSN    string
	Schema string

	PageSize   int
	MaxRows    int
	ParseLimit int

	PostgresMaxConnections int32
}

// Load reads the first .env file that exists among files (".env" when
// none are given) and then the process environment. Variables already set
// in the environment win over the file.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			break
		}
	}

	config := Config{}

	config.ServiceName = cast.ToString(getOrReturnDefaultValue("SIFT_SERVICE_NAME", "sift"))
	config.Environment = cast.ToString(getOrReturnDefaultValue("SIFT_ENVIRONMENT", ReleaseMode))
	config.LogLevel = cast.ToString(getOrReturnDefaultValue("SIFT_LOG_LEVEL", ""))

	config.Driver = strings.ToLower(cast.ToString(getOrReturnDefaultValue("SIFT_DRIVER", DriverSQLite)))
	config.DSN = cast.ToString(getOrReturnDefaultValue("SIFT_DSN", "sift.db"))
	config.Schema = cast.ToString(getOrReturnDefaultValue("SIFT_SCHEMA", ""))

	config.PageSize = cast.ToInt(getOrReturnDefaultValue("SIFT_PAGE_SIZE", 20))
	config.MaxRows = cast.ToInt(getOrReturnDefaultValue("SIFT_MAX_ROWS", 1000))
	config.ParseLimit = cast.ToInt(getOrReturnDefaultValue("SIFT_PARSE_LIMIT", 64))

	config.PostgresMaxConnections = cast.ToInt32(getOrReturnDefaultValue("SIFT_PG_MAX_CONNS", 10))

	return config
}

// Level returns the configured log level, or one derived from the
// environment mode when SIFT_LOG_LEVEL is unset.
func (c Config) Level() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	switch c.Environment {
	case DebugMode:
		return logger.LevelDebug
	case TestMode:
		return logger.LevelDebug
	default:
		return logger.LevelInfo
	}
}

func getOrReturnDefaultValue(key string, defaultValue any) any {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return defaultValue
}
