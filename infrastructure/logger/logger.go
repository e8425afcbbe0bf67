package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	layout := "2006-01-02"
	env := os.Getenv("ENV")
	// Prefer stdout (systemd/docker); LOG_TO_FILE=true writes to logs/<date><env>.log instead.
	logger.Out = os.Stdout
	if os.Getenv("LOG_TO_FILE") == "true" {
		if cwd, err := os.Getwd(); err == nil {
			logsDir := filepath.Join(cwd, "logs")
			if mkErr := os.MkdirAll(logsDir, 0o755); mkErr != nil {
				log.Warnf("Failed to create logs directory %s: %v, falling back to stdout", logsDir, mkErr)
			} else {
				filePath := filepath.Join(logsDir, fmt.Sprintf("%s%s.log", time.Now().Format(layout), env))
				f, openErr := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
				if openErr != nil {
					log.Warnf("Failed to open log file %s: %v, falling back to stdout", filePath, openErr)
				} else {
					logger.Out = f
				}
			}
		}
	}

	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.SetLevel(log.DebugLevel)
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		SetLevel(lvl)
	}
}

// SetLevel changes the level at runtime; unknown names are ignored.
func SetLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown log level, keeping current")
		return
	}
	logger.SetLevel(parsed)
}

func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	functionObject := runtime.FuncForPC(function)
	funcName := ""
	if functionObject != nil {
		funcName = functionObject.Name()
	}
	entry := logger.WithFields(log.Fields{
		"requestId": time.Now().UnixNano() / int64(time.Millisecond),
		"function":  funcName,
		"file":      file,
		"line":      line,
	})

	return entry
}
