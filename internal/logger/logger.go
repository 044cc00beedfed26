// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the structured logging used throughout this
// mount framework: a slog.Logger that can render either plain text or JSON,
// at a severity resolved from cfg.LogSeverity, optionally rotated to disk
// via lumberjack.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/khanhtranngoccva/easy-fuser/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Custom severities beyond slog's built-in Debug/Info/Warn/Error, spaced out
// so program level comparisons (level >= X) work the way slog expects.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelOff   slog.Level = 12
)

var (
	defaultLogger        *slog.Logger
	defaultLoggerFactory = &loggerFactory{
		format: "json",
		level:  cfg.InfoLogSeverity,
	}
)

func init() {
	var programLevel = new(slog.LevelVar)
	setLoggingLevel(string(defaultLoggerFactory.level), programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stdout, programLevel, ""))
}

// loggerFactory owns everything needed to (re)build the default logger's
// handler: where it writes, at what severity, and in what format.
type loggerFactory struct {
	format          string
	file            *os.File
	sysWriter       io.Writer
	level           cfg.LogSeverity
	logRotateConfig cfg.LogRotateLoggingConfig
}

func severityToSlogLevel(severity string) slog.Level {
	switch cfg.LogSeverity(severity) {
	case cfg.TraceLogSeverity:
		return LevelTrace
	case cfg.DebugLogSeverity:
		return LevelDebug
	case cfg.InfoLogSeverity:
		return LevelInfo
	case cfg.WarningLogSeverity:
		return LevelWarn
	case cfg.ErrorLogSeverity:
		return LevelError
	case cfg.OffLogSeverity:
		return LevelOff
	default:
		return LevelInfo
	}
}

func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	programLevel.Set(severityToSlogLevel(level))
}

// levelName renders a slog.Level back to the severity string gcsfuse-style
// logs expect, including the custom TRACE/OFF extremes slog doesn't know.
func levelName(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "TRACE"
	case l <= LevelDebug:
		return "DEBUG"
	case l <= LevelInfo:
		return "INFO"
	case l <= LevelWarn:
		return "WARNING"
	default:
		return "ERROR"
	}
}

func (f *loggerFactory) writer() io.Writer {
	if f.file != nil {
		return f.file
	}
	if f.sysWriter != nil {
		return f.sysWriter
	}
	return os.Stdout
}

func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, programLevel *slog.LevelVar, prefix string) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			a.Key = "severity"
			a.Value = slog.StringValue(levelName(a.Value.Any().(slog.Level)))
		case slog.MessageKey:
			a.Key = "message"
			a.Value = slog.StringValue(prefix + a.Value.String())
		case slog.TimeKey:
			if f.format == "json" {
				t := a.Value.Time()
				a.Key = "timestamp"
				a.Value = slog.GroupValue(
					slog.Int64("seconds", t.Unix()),
					slog.Int64("nanos", int64(t.Nanosecond())),
				)
			} else {
				a.Key = "time"
				a.Value = slog.StringValue(a.Value.Time().Format(time.ANSIC))
			}
		}
		return a
	}

	opts := &slog.HandlerOptions{Level: programLevel, ReplaceAttr: replace}
	if f.format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// SetLogFormat switches the default logger's output format ("text" or
// "json", anything else falls back to "json") without touching its
// destination or severity.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	var programLevel = new(slog.LevelVar)
	setLoggingLevel(string(defaultLoggerFactory.level), programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(defaultLoggerFactory.writer(), programLevel, ""))
}

// InitLogFile points the default logger at a rotated file on disk,
// replacing its stdout destination. An empty FilePath leaves logging on
// stdout.
func InitLogFile(logConfig cfg.LoggingConfig) error {
	defaultLoggerFactory.level = logConfig.Severity
	defaultLoggerFactory.logRotateConfig = logConfig.LogRotate
	if logConfig.Format != "" {
		defaultLoggerFactory.format = logConfig.Format
	}

	if logConfig.FilePath == "" {
		defaultLoggerFactory.sysWriter = os.Stdout
	} else {
		lj := &lumberjack.Logger{
			Filename:   string(logConfig.FilePath),
			MaxSize:    logConfig.LogRotate.MaxFileSizeMb,
			MaxBackups: logConfig.LogRotate.BackupFileCount,
			Compress:   logConfig.LogRotate.Compress,
		}
		defaultLoggerFactory.sysWriter = NewAsyncLogger(lj, 10000)
	}

	var programLevel = new(slog.LevelVar)
	setLoggingLevel(string(defaultLoggerFactory.level), programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(defaultLoggerFactory.writer(), programLevel, ""))
	return nil
}

func Tracef(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) {
	defaultLogger.Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	defaultLogger.Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	defaultLogger.Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	defaultLogger.Error(fmt.Sprintf(format, v...))
}
