package logger

import (
	"log"
	"os"
)

// Logger is a small leveled wrapper over the standard log package.
// Info and Debug go to stdout, Error and Fatal to stderr.
type Logger struct {
	out *log.Logger
	err *log.Logger
	dbg *log.Logger
}

func New() *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		out: log.New(os.Stdout, "INFO: ", flags),
		err: log.New(os.Stderr, "ERROR: ", flags),
		dbg: log.New(os.Stdout, "DEBUG: ", flags),
	}
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.out.Printf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.err.Printf(format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.dbg.Printf(format, v...)
}

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.err.Printf(format, v...)
	os.Exit(1)
}

var std = New()

// Package-level convenience functions logging through a shared instance.

func Info(format string, v ...interface{}) {
	std.Info(format, v...)
}

func Error(format string, v ...interface{}) {
	std.Error(format, v...)
}

func Debug(format string, v ...interface{}) {
	std.Debug(format, v...)
}

func Fatal(format string, v ...interface{}) {
	std.Fatal(format, v...)
}
