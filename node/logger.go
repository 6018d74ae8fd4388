// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chain4travel/camino-foundation/config"
)

const (
	logName       = "foundation"
	logMaxFiles   = 5
	logMaxAgeDays = 30
)

// newLogger logs to stdout and, if a log directory is set, to a rotated file.
func newLogger(config config.Config) logging.Logger {
	format := logging.Plain
	cores := []logging.WrappedCore{
		logging.NewWrappedCore(config.LogLevel, os.Stdout, format.ConsoleEncoder()),
	}
	if config.LogDir != "" {
		rw := &lumberjack.Logger{
			Filename:   filepath.Join(config.LogDir, logName+".log"),
			MaxSize:    config.LogMaxSize,
			MaxAge:     logMaxAgeDays,
			MaxBackups: logMaxFiles,
			Compress:   true,
		}
		cores = append(cores, logging.NewWrappedCore(config.LogLevel, rw, format.FileEncoder()))
	}
	return logging.NewLogger(format.WrapPrefix(logName), cores...)
}
