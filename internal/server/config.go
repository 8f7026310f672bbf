package server

import (
	"time"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the dashboard.
	ListenAddr string

	// ReadTimeout bounds request reads. Zero means 15s.
	ReadTimeout time.Duration

	// AppConfig supplies the default lever state and chart size. Nil means
	// app.DefaultConfig().
	AppConfig *app.Config

	Logger logging.Logger
}
