// log/stack.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// Frames is a call stack; Strings renders it compactly for structured log
// attributes.
type Frames []StackFrame

// Callstack returns the current call stack, skipping the frames internal
// to the logging package itself.
func Callstack(fr Frames) Frames {
	var callers [16]uintptr
	n := runtime.Callers(3, callers[:])
	frames := runtime.CallersFrames(callers[:n])

	fr = fr[:0]
	if cap(fr) < n {
		fr = make(Frames, n)
	}

	for i := 0; i < n; i++ {
		frame, more := frames.Next()
		fn := strings.TrimPrefix(frame.Function, "github.com/oceanpilot/georoute/")
		fn = strings.TrimPrefix(fn, "main.")

		fr[i] = StackFrame{File: filepath.Base(frame.File), Line: frame.Line, Function: fn}

		if !more || frame.Function == "main.main" {
			fr = fr[:i+1]
			break
		}
	}
	return fr
}

func (f StackFrame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}

func (f Frames) Strings() []string {
	s := make([]string, len(f))
	for i, fr := range f {
		s[i] = fr.String()
	}
	return s
}
