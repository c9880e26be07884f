package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cardroom/internal/config"
)

var sink io.Writer = os.Stdout

// Init configures the global zerolog logger. When cfg.File is set the
// log is mirrored to a size-capped file so long-lived rooms cannot
// fill the disk.
func Init(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	if cfg.File != "" {
		if fw, err := newCappedFileWriter(cfg.File, cfg.MaxMB); err == nil {
			output = io.MultiWriter(output, fw)
		}
	}
	sink = output

	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer exposes the configured sink so the HTTP request logger can
// share it.
func Writer() io.Writer {
	return sink
}
