package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

var (
	// Debug flag to control debug logging
	debugEnabled = false
	// The logger instances
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	// Open log file, if any
	logFile *os.File
)

// Init initializes the logger writing to stdout/stderr only.
func Init(debug bool) {
	initWriters(debug, os.Stdout, os.Stderr)
}

// InitWithFile initializes the logger writing to stdout/stderr and a log file.
// The file is appended to so repeated runs accumulate in one place.
func InitWithFile(debug bool, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	initWriters(debug, io.MultiWriter(os.Stdout, f), io.MultiWriter(os.Stderr, f))
	return nil
}

// Close releases the log file, if one was opened.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func initWriters(debug bool, out, errOut io.Writer) {
	debugEnabled = debug

	debugLogger = log.New(out, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	infoLogger = log.New(out, "INFO: ", log.Ldate|log.Ltime)
	warnLogger = log.New(out, "WARN: ", log.Ldate|log.Ltime)
	errorLogger = log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	if debugEnabled {
		Debug("Debug logging enabled")
	}
}

// Debug logs a debug message if debug mode is enabled
func Debug(format string, v ...interface{}) {
	if debugEnabled {
		debugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	infoLogger.Output(2, fmt.Sprintf(format, v...))
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	warnLogger.Output(2, fmt.Sprintf(format, v...))
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	errorLogger.Output(2, fmt.Sprintf(format, v...))
}

// IsDebugEnabled returns whether debug logging is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}
