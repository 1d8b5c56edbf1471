package core

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the standard logger from cfg. An empty level
// keeps info, an empty format keeps text.
func SetupLogging(cfg LogConfiguration, out io.Writer) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if out != nil {
		log.SetOutput(out)
	}
	return nil
}

// Component returns a logger entry tagged with the component name
func Component(name string) *log.Entry {
	return log.WithField("component", name)
}
