package config

import (
	"github.com/MonkyMars/gecho"
)

var logger *gecho.Logger

func InitializeLogger() *gecho.Logger {
	logger = NewLogger(true)
	return logger
}

func GetLogger() *gecho.Logger {
	if logger == nil {
		return InitializeLogger()
	}
	return logger
}

// NewLogger builds a logger at the environment's log level.
func NewLogger(showCaller bool) *gecho.Logger {
	return gecho.NewLogger(gecho.NewConfig(
		gecho.WithShowCaller(showCaller),
		gecho.WithLogLevel(gecho.ParseLogLevel(GetLogLevel())),
	))
}
