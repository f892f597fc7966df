package utils

import (
	"fmt"
	"log"
	"os"
	"sync"
)

var (
	debugOnce   sync.Once
	debugLogger *log.Logger
)

// Debug writes a formatted line to the debug log. Logging is off unless the
// INDM_DEBUG environment variable is set; set it to 1, true or stderr to log
// to stderr, or to any other value, taken as a file path, to log to that file
// (stderr is used if the file cannot be opened).
func Debug(format string, args ...any) {
	debugOnce.Do(initDebug)
	if debugLogger == nil {
		return
	}
	debugLogger.Output(2, fmt.Sprintf(format, args...))
}

func initDebug() {
	target := os.Getenv("INDM_DEBUG")
	if target == "" {
		return
	}

	out := os.Stderr
	if target != "1" && target != "true" && target != "stderr" {
		f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			out = f
		}
	}
	debugLogger = log.New(out, "indm: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
}
