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

package logger

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/khanhtranngoccva/easy-fuser/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	textTraceString   = "^time=\"[a-zA-Z0-9/:. ]{24}\" severity=TRACE message=\"TestLogs: www.traceExample.com\""
	textDebugString   = "^time=\"[a-zA-Z0-9/:. ]{24}\" severity=DEBUG message=\"TestLogs: www.debugExample.com\""
	textInfoString    = "^time=\"[a-zA-Z0-9/:. ]{24}\" severity=INFO message=\"TestLogs: www.infoExample.com\""
	textWarningString = "^time=\"[a-zA-Z0-9/:. ]{24}\" severity=WARNING message=\"TestLogs: www.warningExample.com\""
	textErrorString   = "^time=\"[a-zA-Z0-9/:. ]{24}\" severity=ERROR message=\"TestLogs: www.errorExample.com\""

	jsonTraceString   = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"TRACE\",\"message\":\"TestLogs: www.traceExample.com\"}"
	jsonDebugString   = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"DEBUG\",\"message\":\"TestLogs: www.debugExample.com\"}"
	jsonInfoString    = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"INFO\",\"message\":\"TestLogs: www.infoExample.com\"}"
	jsonWarningString = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"WARNING\",\"message\":\"TestLogs: www.warningExample.com\"}"
	jsonErrorString   = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"ERROR\",\"message\":\"TestLogs: www.errorExample.com\"}"
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func redirectLogsToGivenBuffer(buf *bytes.Buffer, level string) {
	var programLevel = new(slog.LevelVar)
	defaultLogger = slog.New(
		defaultLoggerFactory.createJsonOrTextHandler(buf, programLevel, "TestLogs: "),
	)
	setLoggingLevel(level, programLevel)
}

func fetchLogOutputForSpecifiedSeverityLevel(level string, functions []func()) []string {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, level)

	var output []string
	for _, f := range functions {
		f()
		output = append(output, buf.String())
		buf.Reset()
	}
	return output
}

func getTestLoggingFunctions() []func() {
	return []func(){
		func() { Tracef("www.traceExample.com") },
		func() { Debugf("www.debugExample.com") },
		func() { Infof("www.infoExample.com") },
		func() { Warnf("www.warningExample.com") },
		func() { Errorf("www.errorExample.com") },
	}
}

func validateOutput(t *testing.T, expected []string, output []string) {
	for i := range output {
		if expected[i] == "" {
			assert.Equal(t, expected[i], output[i])
		} else {
			expectedRegexp := regexp.MustCompile(expected[i])
			assert.True(t, expectedRegexp.MatchString(output[i]))
		}
	}
}

func validateLogOutputAtSpecifiedFormatAndSeverity(t *testing.T, format string, level string, expectedOutput []string) {
	defaultLoggerFactory.format = format
	output := fetchLogOutputForSpecifiedSeverityLevel(level, getTestLoggingFunctions())
	validateOutput(t, expectedOutput, output)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelOFF() {
	var expected = []string{"", "", "", "", ""}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", string(cfg.OffLogSeverity), expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelERROR() {
	var expected = []string{"", "", "", "", textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", string(cfg.ErrorLogSeverity), expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelWARNING() {
	var expected = []string{"", "", "", textWarningString, textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", string(cfg.WarningLogSeverity), expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelINFO() {
	var expected = []string{"", "", textInfoString, textWarningString, textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", string(cfg.InfoLogSeverity), expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelDEBUG() {
	var expected = []string{"", textDebugString, textInfoString, textWarningString, textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", string(cfg.DebugLogSeverity), expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelTRACE() {
	var expected = []string{textTraceString, textDebugString, textInfoString, textWarningString, textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", string(cfg.TraceLogSeverity), expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelOFF() {
	var expected = []string{"", "", "", "", ""}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", string(cfg.OffLogSeverity), expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelTRACE() {
	var expected = []string{jsonTraceString, jsonDebugString, jsonInfoString, jsonWarningString, jsonErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", string(cfg.TraceLogSeverity), expected)
}

func (t *LoggerTest) TestSetLoggingLevel() {
	testData := []struct {
		inputLevel           string
		expectedProgramLevel slog.Level
	}{
		{string(cfg.TraceLogSeverity), LevelTrace},
		{string(cfg.DebugLogSeverity), LevelDebug},
		{string(cfg.WarningLogSeverity), LevelWarn},
		{string(cfg.ErrorLogSeverity), LevelError},
		{string(cfg.OffLogSeverity), LevelOff},
	}

	for _, test := range testData {
		programLevel := new(slog.LevelVar)
		setLoggingLevel(test.inputLevel, programLevel)
		assert.Equal(t.T(), test.expectedProgramLevel, programLevel.Level())
	}
}

func (t *LoggerTest) TestInitLogFile() {
	logConfig := cfg.LoggingConfig{
		Severity: cfg.DebugLogSeverity,
		Format:   "text",
		LogRotate: cfg.LogRotateLoggingConfig{
			MaxFileSizeMb:   100,
			BackupFileCount: 2,
			Compress:        true,
		},
	}

	err := InitLogFile(logConfig)

	assert.NoError(t.T(), err)
	assert.Equal(t.T(), "text", defaultLoggerFactory.format)
	assert.Equal(t.T(), cfg.DebugLogSeverity, defaultLoggerFactory.level)
	assert.Equal(t.T(), 100, defaultLoggerFactory.logRotateConfig.MaxFileSizeMb)
	assert.Equal(t.T(), 2, defaultLoggerFactory.logRotateConfig.BackupFileCount)
	assert.True(t.T(), defaultLoggerFactory.logRotateConfig.Compress)
}

func (t *LoggerTest) TestSetLogFormatToText() {
	defaultLoggerFactory = &loggerFactory{
		level: cfg.InfoLogSeverity,
	}

	testData := []struct {
		format         string
		expectedOutput string
	}{
		{"text", textInfoString},
		{"json", jsonInfoString},
	}

	for _, test := range testData {
		SetLogFormat(test.format)

		assert.NotNil(t.T(), defaultLoggerFactory)
		assert.NotNil(t.T(), defaultLogger)
		assert.Equal(t.T(), test.format, defaultLoggerFactory.format)

		var buf bytes.Buffer
		redirectLogsToGivenBuffer(&buf, string(defaultLoggerFactory.level))
		Infof("www.infoExample.com")
		expectedRegexp := regexp.MustCompile(test.expectedOutput)
		assert.True(t.T(), expectedRegexp.MatchString(buf.String()))
	}
}
