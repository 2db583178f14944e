package log

import (
	"context"
	"fmt"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"
)

const (
	HttpXRequestId = "X-Request-Id"
	CtxRequestId   = "requestId"

	FormatText = "text"
	FormatJSON = "json"
)

func callerPrettyfier(frame *runtime.Frame) (string, string) {
	return "", fmt.Sprintf("%s:%d", path.Base(frame.File), frame.Line)
}

// InitLog configures the standard logger. format is FormatText or FormatJSON;
// anything else falls back to text.
func InitLog(logLevel, format string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Errorf("failed to parse log level: %v, err: %v", logLevel, err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(true)
	logrus.SetOutput(os.Stdout)

	if format == FormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  "2006-01-02T15:04:05.000Z07:00",
			CallerPrettyfier: callerPrettyfier,
		})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat:  "2006-01-02 15:04:05",
		FullTimestamp:    true,
		DisableColors:    true,
		DisableQuote:     true,
		CallerPrettyfier: callerPrettyfier,
	})
}

// WithRequestId returns a copy of ctx carrying the request id picked up by GetLogger.
func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, CtxRequestId, requestId)
}

func GetLogger(c context.Context) *logrus.Entry {
	v := c.Value(CtxRequestId)
	if v != nil {
		return logrus.WithFields(logrus.Fields{
			CtxRequestId: v,
		})
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Component is GetLogger tagged with the emitting component.
func Component(c context.Context, name string) *logrus.Entry {
	return GetLogger(c).WithField("component", name)
}
