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

package common

// DbgLevel is an enum to represent the debug level type
type DbgLevel int

const (
	// DbgLvlNone is the default debug level
	DbgLvlNone DbgLevel = iota
	// DbgLvlFatal is the fatal debug level (this will also exit the program!)
	DbgLvlFatal
	// DbgLvlError is the error debug level
	DbgLvlError
	// DbgLvlWarn is the warning debug level
	DbgLvlWarn
	// DbgLvlInfo is the info debug level
	DbgLvlInfo
	// DbgLvlDebug is the first debug level
	DbgLvlDebug
	// DbgLvlDebug1 is the debug level 1
	DbgLvlDebug1
	// DbgLvlDebug2 is the debug level 2
	DbgLvlDebug2
	// DbgLvlDebug3 is the debug level 3
	DbgLvlDebug3
	// DbgLvlDebug4 is the debug level 4
	DbgLvlDebug4
	// DbgLvlDebug5 is the debug level 5
	DbgLvlDebug5
)

const (
	// LocalhostStr is a constant for the string "localhost".
	LocalhostStr = "localhost"
	// DisableStr is a constant for the string "disable".
	DisableStr = "disable"
)

var (
	debugLevel   DbgLevel
	loggerPrefix string
)
