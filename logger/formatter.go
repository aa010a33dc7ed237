package logger

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultFieldSeparator  = " | "
	defaultTimestampFormat = time.RFC3339
	resetColorCode         = 0
)

// LevelNameDisplayMode controls which levels print their name.
type LevelNameDisplayMode int

const (
	ShowAll LevelNameDisplayMode = iota
	ShowAboveWarn
	ShowAboveError
	HideAll
)

// Formatter renders "time [LEVL] [Host:x | Step:y] message (caller)".
type Formatter struct {
	TimestampFormat  string
	DisableTimestamp bool
	NoColors         bool
	DisplayLevelName LevelNameDisplayMode
	// FieldsDisplayWithOrder fields are printed first, the rest alphabetically.
	FieldsDisplayWithOrder []string
	FieldSeparator         string
	HideKeys               bool
	// MaxFieldValueLength truncates long values, 0 disables truncation.
	MaxFieldValueLength   int
	DisableCaller         bool
	CustomCallerFormatter func(*runtime.Frame) string
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	if !f.DisableTimestamp {
		tsFormat := f.TimestampFormat
		if tsFormat == "" {
			tsFormat = defaultTimestampFormat
		}
		b.WriteString(entry.Time.Format(tsFormat))
		b.WriteByte(' ')
	}

	if f.showLevel(entry.Level) {
		lvl := strings.ToUpper(entry.Level.String())
		if len(lvl) > 4 {
			lvl = lvl[:4]
		}
		if f.NoColors {
			fmt.Fprintf(b, "[%s] ", lvl)
		} else {
			fmt.Fprintf(b, "\x1b[%dm[%s]\x1b[%dm ", getColorByLevel(entry.Level), lvl, resetColorCode)
		}
	}

	if len(entry.Data) > 0 {
		sep := f.FieldSeparator
		if sep == "" {
			sep = defaultFieldSeparator
		}
		b.WriteByte('[')
		for i, key := range f.orderedKeys(entry.Data) {
			if i > 0 {
				b.WriteString(sep)
			}
			f.writeKeyValue(b, key, entry.Data[key])
		}
		b.WriteString("] ")
	}

	b.WriteString(entry.Message)

	if !f.DisableCaller && entry.HasCaller() {
		b.WriteByte(' ')
		f.writeCaller(b, entry.Caller)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *Formatter) showLevel(level logrus.Level) bool {
	switch f.DisplayLevelName {
	case ShowAll:
		return true
	case ShowAboveWarn:
		return level <= logrus.WarnLevel
	case ShowAboveError:
		return level <= logrus.ErrorLevel
	default:
		return false
	}
}

func (f *Formatter) orderedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	seen := make(map[string]bool, len(f.FieldsDisplayWithOrder))
	for _, key := range f.FieldsDisplayWithOrder {
		if _, ok := data[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(data)-len(keys))
	for key := range data {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func (f *Formatter) writeKeyValue(b *bytes.Buffer, key string, value interface{}) {
	val := fmt.Sprintf("%v", value)
	if f.MaxFieldValueLength > 0 && len(val) > f.MaxFieldValueLength {
		val = val[:f.MaxFieldValueLength] + "..."
	}
	if f.HideKeys {
		b.WriteString(val)
		return
	}
	fmt.Fprintf(b, "%s:%s", key, val)
}

func (f *Formatter) writeCaller(b *bytes.Buffer, frame *runtime.Frame) {
	if f.CustomCallerFormatter != nil {
		b.WriteString(f.CustomCallerFormatter(frame))
		return
	}
	fn := filepath.Base(frame.Function)
	if idx := strings.LastIndex(fn, "."); idx >= 0 {
		fn = fn[idx+1:]
	}
	fmt.Fprintf(b, "(%s:%d %s)", filepath.Base(frame.File), frame.Line, fn)
}

func getColorByLevel(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return colorBlue
	case logrus.WarnLevel:
		return colorYellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorRed
	default:
		return colorGray
	}
}

const (
	colorRed    = 31
	colorYellow = 33
	colorBlue   = 36
	colorGray   = 37
)
