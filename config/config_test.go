// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func buildConfig(t *testing.T, args ...string) (Config, error) {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	v, err := BuildViper(fs)
	require.NoError(t, err)
	return GetConfig(v)
}

func TestGetConfigDefaults(t *testing.T) {
	require := require.New(t)

	config, err := buildConfig(t)
	require.NoError(err)
	require.Equal(Config{
		HTTPHost:            "127.0.0.1",
		HTTPPort:            9650,
		HTTPAllowedOrigins:  []string{"*"},
		HTTPShutdownTimeout: 10 * time.Second,
		DBType:              LevelDBType,
		DBDir:               "db",
		GenesisFile:         "genesis.json",
		LogLevel:            logging.Info,
		LogMaxSize:          8,
		MetricsNamespace:    "foundation",
	}, config)
	require.Equal("127.0.0.1:9650", config.HTTPAddress())
}

func TestGetConfigFlags(t *testing.T) {
	require := require.New(t)

	config, err := buildConfig(t,
		"--http-port=8080",
		"--http-allowed-origins=https://a.io,https://b.io",
		"--http-shutdown-timeout=1m",
		"--api-max-requests-per-second=2.5",
		"--db-type=memdb",
		"--log-level=debug",
	)
	require.NoError(err)
	require.Equal(uint16(8080), config.HTTPPort)
	require.Equal([]string{"https://a.io", "https://b.io"}, config.HTTPAllowedOrigins)
	require.Equal(time.Minute, config.HTTPShutdownTimeout)
	require.Equal(2.5, config.APIMaxRequestsPerSecond)
	require.Equal(MemDBType, config.DBType)
	require.Equal(logging.Debug, config.LogLevel)
}

func TestGetConfigEnv(t *testing.T) {
	require := require.New(t)
	t.Setenv("FOUNDATION_HTTP_PORT", "7070")
	t.Setenv("FOUNDATION_LOG_LEVEL", "warn")
	t.Setenv("FOUNDATION_DB_TYPE", "memdb")

	// explicitly set flags win over the environment
	config, err := buildConfig(t, "--db-type=leveldb")
	require.NoError(err)
	require.Equal(uint16(7070), config.HTTPPort)
	require.Equal(logging.Warn, config.LogLevel)
	require.Equal(LevelDBType, config.DBType)
}

func TestGetConfigFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(os.WriteFile(path, []byte("db-type: memdb\nlog-max-size: 2\nhttp-host: 0.0.0.0\n"), 0o600))

	config, err := buildConfig(t, "--config-file="+path, "--http-host=localhost")
	require.NoError(err)
	require.Equal(MemDBType, config.DBType)
	require.Equal(2, config.LogMaxSize)
	require.Equal("localhost", config.HTTPHost)
}

func TestBuildViperMissingConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config-file=" + filepath.Join(t.TempDir(), "missing.yaml")}))
	_, err := BuildViper(fs)
	require.Error(t, err)
}

func TestConfigVerify(t *testing.T) {
	tests := map[string]struct {
		config      Config
		expectedErr error
	}{
		"OK": {
			config: Config{DBType: MemDBType},
		},
		"Unknown database": {
			config:      Config{DBType: "pebble"},
			expectedErr: errUnknownDBType,
		},
		"Leveldb without directory": {
			config:      Config{DBType: LevelDBType},
			expectedErr: errMissingDBDir,
		},
		"Negative rate limit": {
			config:      Config{DBType: MemDBType, APIMaxRequestsPerSecond: -1},
			expectedErr: errInvalidRateLimit,
		},
		"Log file without size": {
			config:      Config{DBType: MemDBType, LogDir: "logs"},
			expectedErr: errInvalidLogMaxSize,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, tt.config.Verify(), tt.expectedErr)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	require.NoError(LoadEnvFile(filepath.Join(dir, ".env")))

	const key = "FOUNDATION_TEST_LOAD_ENV_FILE"
	t.Cleanup(func() {
		_ = os.Unsetenv(key)
	})
	path := filepath.Join(dir, ".env")
	require.NoError(os.WriteFile(path, []byte(key+"=loaded\n"), 0o600))
	require.NoError(LoadEnvFile(path))
	require.Equal("loaded", os.Getenv(key))
}
