package core

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/jcelliott/lumber"
)

var log = lumber.NewConsoleLogger(lumber.INFO)

var logLevels = map[string]int{
	"TRACE": lumber.TRACE,
	"DEBUG": lumber.DEBUG,
	"INFO":  lumber.INFO,
	"WARN":  lumber.WARN,
	"ERROR": lumber.ERROR,
	"FATAL": lumber.FATAL,
}

func init() {
	log.TimeFormat("2006-01-02 15:04:05.000")
	log.Prefix("GoCommando")
}

// SetLogLevel sets the level by name (debug, info, warn, error). Unknown names fall back to INFO.
func SetLogLevel(name string) {
	lvl, ok := logLevels[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		lvl = lumber.INFO
	}
	log.Level(lvl)
}

func IsLogDebug() bool {
	return log.IsDebug()
}

func IsLogInfo() bool {
	return log.IsInfo()
}

func LogDebugF(format string, v ...interface{}) {
	if log.IsDebug() {
		doLogF(log.Debug, format, v...)
	}
}

func LogInfoF(format string, v ...interface{}) {
	if log.IsInfo() {
		doLogF(log.Info, format, v...)
	}
}

func LogWarnF(format string, v ...interface{}) {
	if log.IsWarn() {
		doLogF(log.Warn, format, v...)
	}
}

func LogErrorF(format string, v ...interface{}) {
	if log.IsError() {
		doLogF(log.Error, format, v...)
	}
}

func LogDebug(v ...interface{}) {
	if log.IsDebug() {
		doLog(log.Debug, v...)
	}
}

func LogInfo(v ...interface{}) {
	if log.IsInfo() {
		doLog(log.Info, v...)
	}
}

func LogWarn(v ...interface{}) {
	if log.IsWarn() {
		doLog(log.Warn, v...)
	}
}

func LogError(v ...interface{}) {
	if log.IsError() {
		doLog(log.Error, v...)
	}
}

func LogFatal(v ...interface{}) {
	doLog(log.Fatal, v...)
	os.Exit(2)
}

func doLogF(logger func(format string, v ...interface{}), format string, v ...interface{}) {
	logger("%s | %s", caller(), fmt.Sprintf(format, v...))
}

func doLog(logger func(format string, v ...interface{}), v ...interface{}) {
	logger("%s | %s", caller(), strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// caller reports the Log* call site, three frames above it.
func caller() string {
	_, fn, line, ok := runtime.Caller(3)
	if !ok {
		return "???"
	}
	return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(fn)), path.Base(fn), line)
}
