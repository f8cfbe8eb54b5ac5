package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type BasicStruct struct {
	X int
	y string
}

// assertLogMatches will fuzzy match log lines. It checks the time format but ignores the exact
// time, and expects a match on the filename but not the line number.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Use the length of the first string as a weak verification that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{name: "pilot", level: NewAtomicLevelAt(DEBUG), inUTC: true, appenders: []Appender{NewWriterAppender(notStdout)}}

	logger.Info("pilot Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:12:09.459Z	INFO	pilot	logging/impl_test.go:64	pilot Info log`)

	logger.Infof("pilot %s log", "infof")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:12:09.459Z	INFO	pilot	logging/impl_test.go:68	pilot infof log`)

	logger.Debugw("pilot logw", "key", "value", "BasicStruct", BasicStruct{1, "alice"})
	assertLogMatches(t, notStdout,
		`2023-10-30T13:12:09.459Z	DEBUG	pilot	logging/impl_test.go:72	pilot logw	{"key":"value","BasicStruct":{"X":1}}`)

	logger.Warnw("unpaired", "lonely")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:12:09.459Z	WARN	pilot	logging/impl_test.go:76	unpaired	{"lonely":"unpaired log key"}`)

	sub := logger.Sublogger("emitter").WithFields("run", "abc")
	sub.Errorw("write failed", "attempt", 2)
	assertLogMatches(t, notStdout,
		`2023-10-30T13:12:09.459Z	ERROR	pilot.emitter	logging/impl_test.go:81	write failed	{"run":"abc","attempt":2}`)
}

func TestLevels(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")
	test.That(t, observed.Len(), test.ShouldEqual, 2)
	test.That(t, observed.FilterMessage("kept").FilterLevelExact(zapcore.WarnLevel).Len(), test.ShouldEqual, 1)

	// context debug mode bypasses the level.
	ctx := EnableDebugMode(context.Background(), "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, GetName(ctx), test.ShouldHaveLength, 6)
	test.That(t, IsDebugMode(context.Background()), test.ShouldBeFalse)
	logger.CDebugw(ctx, "traced", "key", 1)
	logger.CDebugw(context.Background(), "untraced")
	test.That(t, observed.FilterMessage("traced").Len(), test.ShouldEqual, 1)
	test.That(t, observed.FilterMessage("untraced").Len(), test.ShouldEqual, 0)

	// subloggers start at the parent's level and are independent afterwards.
	sub := logger.Sublogger("sub")
	test.That(t, sub.GetLevel(), test.ShouldEqual, WARN)
	sub.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)
	sub.Debug("sub debug")
	test.That(t, observed.FilterMessage("sub debug").Len(), test.ShouldEqual, 1)
	test.That(t, observed.FilterMessage("sub debug").All()[0].LoggerName, test.ShouldEqual, "sub")
}

func TestLevelFromString(t *testing.T) {
	for _, c := range []struct {
		in    string
		level Level
	}{{"debug", DEBUG}, {"INFO", INFO}, {"Warning", WARN}, {"error", ERROR}} {
		level, err := LevelFromString(c.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, c.level)
	}
	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldBeError, `unknown log level: "verbose"`)
	test.That(t, WARN.String(), test.ShouldEqual, "Warn")
	test.That(t, ERROR.AsZap(), test.ShouldEqual, zapcore.ErrorLevel)
}

func TestAsZapIsObserved(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.AsZap().Infow("from zap", "key", "value")
	test.That(t, observed.FilterMessage("from zap").Len(), test.ShouldEqual, 1)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pilot.log")
	appender, closer := NewFileAppender(FileAppenderConfig{Path: path})
	logger := NewBlankLogger("pilot")
	logger.AddAppender(appender)

	logger.Infow("written to file", "key", "value")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, closer.Close(), test.ShouldBeNil)

	//nolint:gosec
	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "INFO\tpilot\t")
	test.That(t, string(contents), test.ShouldContainSubstring, "written to file\t{\"key\":\"value\"}")
}
