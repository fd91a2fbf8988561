package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects log level and output format
type Config struct {
	Level  string // zerolog level name, info when unparseable
	Format string // console or json
	Caller bool
}

// New builds a logger writing to w. Console format is human readable,
// anything else emits JSON lines.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if cfg.Format == "" || cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(out)).Level(lvl).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Init builds a logger writing to w and installs it as the global logger
func Init(cfg Config, w io.Writer) zerolog.Logger {
	logger := New(cfg, w)
	log.Logger = logger
	return logger
}
