package app

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide structured logger. Development mode is
// selected with APP_ENV=development; anything else gets JSON output.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
