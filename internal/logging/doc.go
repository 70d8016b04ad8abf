// Package logging provides structured logging for Refract.
//
// It wraps Go's log/slog JSON handler and adds persistent attributes so that
// every line emitted on behalf of a component instance carries its ID.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithComponent("counter-1")
//	log.Debug("property pushed", "property", "value")
//
// When dir is empty the logger writes to stderr. [NopLogger] discards
// everything and is the default for the stream and component packages.
//
// # Thread Safety
//
// [Logger] is safe for concurrent use. Child loggers share the parent's
// handler and file.
package logging
