// Package logging provides structured logging for the emulator.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same fields and format.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting emulator", "port", 8080)
//	logger.Error("mqtt connect failed", "error", err)
//
// Domain packages do not import this package. They declare a small Logger
// interface (Debug/Info/Warn/Error) which *Logger satisfies.
package logging
