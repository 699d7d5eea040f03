// Copyright 2023 Paolo Fabio Zaino
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

// Package common holds the logger and the small helpers shared by every
// other package of ordsearch.
package common

import (
	"io"
	"log"
	"os"
	"strconv"
	"sync"
)

var logMu sync.Mutex

// InitLogger initializes the logger
func InitLogger(appName string) {
	logMu.Lock()
	defer logMu.Unlock()

	log.SetOutput(os.Stdout)

	pid := os.Getpid()
	ppid := os.Getppid()
	hostname, err := os.Hostname()
	if err != nil {
		hostname = LocalhostStr
	}

	// process instance name: <hostname>:<pid>:<ppid>
	processName := hostname + ":" + strconv.Itoa(pid) + ":" + strconv.Itoa(ppid)
	loggerPrefix = appName + " [" + processName + "]: "

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

// SetLogOutput redirects the logger, mostly useful to silence it in tools
// that write their results on stdout.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	log.SetOutput(w)
}

// UpdateLoggerConfig Updates the logger configuration
func UpdateLoggerConfig() {
	if GetDebugLevel() > DbgLvlInfo {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}
}

// SetDebugLevel allows to set the current debug level
func SetDebugLevel(dbgLvl DbgLevel) {
	logMu.Lock()
	debugLevel = dbgLvl
	logMu.Unlock()
}

// GetDebugLevel returns the value of the current debug level
func GetDebugLevel() DbgLevel {
	logMu.Lock()
	defer logMu.Unlock()
	return debugLevel
}

// DebugMsg prints a log message at the given level.
// Fatal, Error, Warning and Info messages are always logged, debug messages
// only when the configured debug level is equal or higher.
func DebugMsg(dbgLvl DbgLevel, msg string, args ...interface{}) {
	if dbgLvl > DbgLvlInfo && GetDebugLevel() < dbgLvl {
		return
	}
	log.Printf(loggerPrefix+levelTag(dbgLvl)+msg, args...)
	if dbgLvl == DbgLvlFatal {
		os.Exit(1)
	}
}

func levelTag(dbgLvl DbgLevel) string {
	switch dbgLvl {
	case DbgLvlFatal:
		return "[FATAL] "
	case DbgLvlError:
		return "[ERROR] "
	case DbgLvlWarn:
		return "[WARN] "
	case DbgLvlInfo, DbgLvlNone:
		return ""
	default:
		return "[DEBUG] "
	}
}
