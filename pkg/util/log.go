package util

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. Packages log through the helpers below
// so that one SetLogLevel or SetJSONFormat call governs every pass.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetJSONFormat enables JSON log format
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithField returns a logger with a field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields returns a logger with multiple fields
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithSwitch returns a logger with switch context
func WithSwitch(name string) *logrus.Entry {
	return Logger.WithField("switch", name)
}

// WithDomain returns a logger scoped to one state domain (ports, vlans, ...)
func WithDomain(domain string) *logrus.Entry {
	return Logger.WithField("domain", domain)
}

// WithGeneration returns a logger carrying a state generation number
func WithGeneration(gen uint64) *logrus.Entry {
	return Logger.WithField("generation", gen)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}
