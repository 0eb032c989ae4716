package logging

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logger is the global logger instance. It is a no-op logger until Setup runs.
var Logger = zap.NewNop()

// Setup builds the process logger. Debug selects the development config at
// debug level; otherwise the production config is used at warn level so that
// a normal run only prints its summary.
func Setup(debug bool, appName, appVersion string) (*zap.Logger, error) {
	var cfg zap.Config

	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	cfg.InitialFields = map[string]interface{}{
		"appName":    appName,
		"appVersion": appVersion,
		"runID":      uuid.NewString(),
	}

	logger, err := cfg.Build()
	if err != nil {
		Logger = zap.NewExample()
		return Logger, err
	}

	Logger = logger
	zap.ReplaceGlobals(Logger)
	return Logger, nil
}
