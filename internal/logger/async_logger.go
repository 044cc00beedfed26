// Copyright 2025 Google LLC
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
	"fmt"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AsyncLogger buffers writes to a lumberjack.Logger on a background
// goroutine, so a slow or momentarily blocked disk never stalls a FUSE op
// handler that happens to log. A full buffer drops the message rather than
// blocking the writer.
type AsyncLogger struct {
	target *lumberjack.Logger
	ch     chan []byte
	done   chan struct{}
}

func NewAsyncLogger(lj *lumberjack.Logger, bufSize int) *AsyncLogger {
	l := &AsyncLogger{
		target: lj,
		ch:     make(chan []byte, bufSize),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for data := range l.ch {
		if _, err := l.target.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "asynclogger: write failed: %v\n", err)
		}
	}
}

func (l *AsyncLogger) Write(p []byte) (int, error) {
	data := make([]byte, len(p))
	copy(data, p)

	select {
	case l.ch <- data:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close drains the buffer and closes the underlying lumberjack.Logger.
func (l *AsyncLogger) Close() error {
	close(l.ch)
	<-l.done
	return l.target.Close()
}
