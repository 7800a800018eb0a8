// Package log is the logging facade used by jsonfetch.
//
// Library code depends only on the [Logger] interface so that callers can
// plug in their own logging. Two implementations ship with the package:
// a zerolog-backed adapter and a no-op logger.
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	client := jsonhttp.New(jsonhttp.WithLogger(logger))
package log
