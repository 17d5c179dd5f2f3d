package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// InitLambda configures logging for the Lambda runtime: JSON output so
// CloudWatch Logs Insights can query fields directly.
func InitLambda() {
	log.SetFormatter(&log.JSONFormatter{})
	setLogLevel(os.Getenv("LOG_LEVEL"))
}

// InitCLI configures human-readable logging for the operations CLI.
func InitCLI(logLevel string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	setLogLevel(logLevel)
}

// setLogLevel sets the log level based on string input
func setLogLevel(logLevel string) {
	switch strings.ToLower(logLevel) {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
