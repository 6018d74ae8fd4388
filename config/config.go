// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigFileKey              = "config-file"
	HTTPHostKey                = "http-host"
	HTTPPortKey                = "http-port"
	HTTPAllowedOriginsKey      = "http-allowed-origins"
	HTTPShutdownTimeoutKey     = "http-shutdown-timeout"
	APIMaxRequestsPerSecondKey = "api-max-requests-per-second"
	DBTypeKey                  = "db-type"
	DBDirKey                   = "db-dir"
	GenesisFileKey             = "genesis-file"
	LogLevelKey                = "log-level"
	LogDirKey                  = "log-dir"
	LogMaxSizeKey              = "log-max-size"
	MetricsNamespaceKey        = "metrics-namespace"

	EnvPrefix = "FOUNDATION"

	MemDBType   = "memdb"
	LevelDBType = "leveldb"
)

var (
	errUnknownDBType     = errors.New("unknown database type")
	errMissingDBDir      = errors.New("leveldb needs a database directory")
	errInvalidRateLimit  = errors.New("api request rate limit must not be negative")
	errInvalidLogMaxSize = errors.New("log max size must be positive")

	logLevelType = reflect.TypeOf(logging.Level(0))
)

// Config is the configuration of a foundation node.
type Config struct {
	HTTPHost            string        `mapstructure:"http-host"`
	HTTPPort            uint16        `mapstructure:"http-port"`
	HTTPAllowedOrigins  []string      `mapstructure:"http-allowed-origins"`
	HTTPShutdownTimeout time.Duration `mapstructure:"http-shutdown-timeout"`
	// Zero disables rate limiting
	APIMaxRequestsPerSecond float64 `mapstructure:"api-max-requests-per-second"`

	DBType      string `mapstructure:"db-type"`
	DBDir       string `mapstructure:"db-dir"`
	GenesisFile string `mapstructure:"genesis-file"`

	LogLevel logging.Level `mapstructure:"log-level"`
	// Empty disables the log file
	LogDir string `mapstructure:"log-dir"`
	// In megabytes
	LogMaxSize int `mapstructure:"log-max-size"`

	MetricsNamespace string `mapstructure:"metrics-namespace"`
}

func (c *Config) Verify() error {
	switch c.DBType {
	case MemDBType:
	case LevelDBType:
		if c.DBDir == "" {
			return errMissingDBDir
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownDBType, c.DBType)
	}
	if c.APIMaxRequestsPerSecond < 0 {
		return errInvalidRateLimit
	}
	if c.LogDir != "" && c.LogMaxSize <= 0 {
		return errInvalidLogMaxSize
	}
	return nil
}

// HTTPAddress returns the address the API server listens on.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// AddFlags adds the node flags to [fs].
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "Path to a config file, flags and environment variables take precedence")

	fs.String(HTTPHostKey, "127.0.0.1", "Address of the HTTP server")
	fs.Uint16(HTTPPortKey, 9650, "Port of the HTTP server")
	fs.StringSlice(HTTPAllowedOriginsKey, []string{"*"}, "Origins allowed to access the HTTP server")
	fs.Duration(HTTPShutdownTimeoutKey, 10*time.Second, "Maximum time to wait for open requests on shutdown")
	fs.Float64(APIMaxRequestsPerSecondKey, 0, "Maximum number of API requests per second, 0 is unlimited")

	fs.String(DBTypeKey, LevelDBType, fmt.Sprintf("Database type, one of %s or %s", LevelDBType, MemDBType))
	fs.String(DBDirKey, "db", "Database directory")
	fs.String(GenesisFileKey, "genesis.json", "Genesis file, only read when the database is empty")

	fs.String(LogLevelKey, logging.Info.String(), "The log level")
	fs.String(LogDirKey, "", "Directory of the rotated log files, empty disables file logging")
	fs.Int(LogMaxSizeKey, 8, "Maximum size in megabytes of a log file before it is rotated")

	fs.String(MetricsNamespaceKey, "foundation", "Namespace of the prometheus metrics")
}

// BuildViper binds [fs] and the environment to a new viper instance. [fs]
// must already be parsed.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if configFile := v.GetString(ConfigFileKey); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file %q: %w", configFile, err)
		}
	}
	return v, nil
}

// GetConfig decodes and verifies the node config held by [v].
func GetConfig(v *viper.Viper) (Config, error) {
	config := Config{}
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToLogLevelHookFunc,
	)))
	if err != nil {
		return config, fmt.Errorf("couldn't decode config: %w", err)
	}
	if err := config.Verify(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func stringToLogLevelHookFunc(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != logLevelType {
		return data, nil
	}
	return logging.ToLevel(data.(string))
}

// LoadEnvFile loads the environment variables of a dotenv file. A missing
// file is ignored.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
