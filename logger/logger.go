package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/file"
)

// Log is the global logger instance. It writes to stderr until InitGlobalLogger is called.
var Log *Logger

// Logger wraps logrus.Logger with host/step scoped helpers.
type Logger struct {
	*logrus.Logger
}

var defaultFieldsOrder = []string{
	common.HostName, common.OperationName, common.StepName, common.ScriptName,
}

func init() {
	Log = newConsoleLog(logrus.InfoLevel, ShowAboveWarn)
}

func newConsoleLog(level logrus.Level, display LevelNameDisplayMode) *Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&Formatter{
		TimestampFormat:        "15:04:05",
		DisplayLevelName:       display,
		DisableCaller:          true,
		FieldsDisplayWithOrder: defaultFieldsOrder,
	})
	// stdout carries command output and JSON responses
	l.SetOutput(os.Stderr)
	return &Logger{Logger: l}
}

// InitGlobalLogger replaces the global Log. An empty outputPath keeps console
// logging; otherwise entries go to a daily rotated file under outputPath.
func InitGlobalLogger(outputPath string, verbose bool, defaultLevel logrus.Level) error {
	l, err := NewLogger(outputPath, verbose, defaultLevel)
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// NewLogger builds a logger without touching the global one.
func NewLogger(outputPath string, verbose bool, defaultLevel logrus.Level) (*Logger, error) {
	level := defaultLevel
	display := ShowAboveWarn
	if verbose {
		level = logrus.DebugLevel
		display = ShowAll
	}

	if outputPath == "" {
		return newConsoleLog(level, display), nil
	}

	if err := file.CreateDir(outputPath); err != nil {
		return nil, fmt.Errorf("failed to create log output directory %s: %w", outputPath, err)
	}
	logFilePath := filepath.Join(outputPath, common.AppName+".log")

	writer, err := rotatelogs.New(
		logFilePath+".%Y%m%d",
		rotatelogs.WithLinkName(logFilePath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rotatelogs for %s: %w", logFilePath, err)
	}

	l := logrus.New()
	l.SetLevel(level)
	l.SetReportCaller(true)

	fileFormatter := &Formatter{
		TimestampFormat:        "2006-01-02 15:04:05.000 MST",
		NoColors:               true,
		DisplayLevelName:       display,
		FieldsDisplayWithOrder: defaultFieldsOrder,
		CustomCallerFormatter: func(frame *runtime.Frame) string {
			return fmt.Sprintf("[%s:%d]", filepath.Base(frame.File), frame.Line)
		},
	}
	l.SetFormatter(fileFormatter)

	writers := lfshook.WriterMap{}
	for _, lv := range logrus.AllLevels {
		if l.IsLevelEnabled(lv) {
			writers[lv] = writer
		}
	}
	l.Hooks.Add(lfshook.NewHook(writers, fileFormatter))
	// the hook owns file output
	l.SetOutput(io.Discard)

	return &Logger{Logger: l}, nil
}

// WithHost scopes an entry to a remote host.
func (lg *Logger) WithHost(host string) *logrus.Entry {
	return lg.Logger.WithField(common.HostName, host)
}

// WithOperation scopes an entry to a host and a named operation.
func (lg *Logger) WithOperation(host, operation string) *logrus.Entry {
	return lg.Logger.WithFields(logrus.Fields{
		common.HostName:      host,
		common.OperationName: operation,
	})
}

// WithStep scopes an entry to a single installer step.
func (lg *Logger) WithStep(host, operation, step string) *logrus.Entry {
	return lg.WithOperation(host, operation).WithField(common.StepName, step)
}

func (lg *Logger) logfWithFields(level logrus.Level, fields logrus.Fields, format string, args []interface{}) {
	lg.Logger.WithFields(fields).Logf(level, format, args...)
}

func (lg *Logger) DebugfHost(host string, format string, args ...interface{}) {
	lg.logfWithFields(logrus.DebugLevel, logrus.Fields{common.HostName: host}, format, args)
}

func (lg *Logger) InfofHost(host string, format string, args ...interface{}) {
	lg.logfWithFields(logrus.InfoLevel, logrus.Fields{common.HostName: host}, format, args)
}

func (lg *Logger) WarnfHost(host string, format string, args ...interface{}) {
	lg.logfWithFields(logrus.WarnLevel, logrus.Fields{common.HostName: host}, format, args)
}

func (lg *Logger) ErrorfHost(host string, err error, format string, args ...interface{}) {
	fields := logrus.Fields{common.HostName: host}
	if err != nil {
		fields["error"] = err
	}
	lg.logfWithFields(logrus.ErrorLevel, fields, format, args)
}
