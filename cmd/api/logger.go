package main

import (
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

func newLogger(level string) *log.Logger {
	lg := log.New("camerastore")
	lg.SetOutput(os.Stdout)
	lg.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`)

	switch strings.ToLower(level) {
	case "debug":
		lg.SetLevel(log.DEBUG)
	case "warn":
		lg.SetLevel(log.WARN)
	case "error":
		lg.SetLevel(log.ERROR)
	default:
		lg.SetLevel(log.INFO)
	}
	return lg
}
