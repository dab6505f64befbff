package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const logTimeFormat = "15:04:05"

var (
	globalLogger arbor.ILogger
	loggerOnce   sync.Once
	loggerMutex  sync.Mutex
)

func consoleWriter(textOutput bool) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: logTimeFormat,
		TextOutput: textOutput,
	}
}

// GetLogger returns the process-wide logger. Before InitLogger runs it
// falls back to a console-only logger so early startup paths can log.
func GetLogger() arbor.ILogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		loggerOnce.Do(func() {
			globalLogger = arbor.NewLogger().WithConsoleWriter(consoleWriter(true))
		})
	}
	return globalLogger
}

// InitLogger builds the logger from configuration and installs it as the
// process-wide instance. Output targets come from logging.output; the
// log file lives in a logs/ directory beside the executable.
func InitLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()
	textOutput := config.Logging.Format != "json"

	for _, output := range config.Logging.Output {
		switch output {
		case "file":
			dir, err := logDir()
			if err != nil {
				fmt.Printf("Warning: file logging disabled: %v\n", err)
				continue
			}
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   filepath.Join(dir, "colligo.log"),
				TimeFormat: logTimeFormat,
				MaxSize:    100 * 1024 * 1024,
				MaxBackups: 3,
				TextOutput: textOutput,
			})
		case "stdout", "console":
			logger = logger.WithConsoleWriter(consoleWriter(textOutput))
		}
	}

	logger = logger.WithLevelFromString(config.Logging.Level)

	loggerMutex.Lock()
	globalLogger = logger
	loggerMutex.Unlock()

	return logger
}

func logDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}
	dir := filepath.Join(filepath.Dir(execPath), "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}
	return dir, nil
}
