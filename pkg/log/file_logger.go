package log

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/fxamacker/cbor/v2"
)

// DefaultFileQueueSize is the number of events buffered by a FileLogger
// before further events are dropped.
const DefaultFileQueueSize = 256

// FileLogger appends journal events to a file in CBOR format.
//
// Log never blocks: events are queued and encoded by a background goroutine.
// When the queue is full the event is dropped and counted.
type FileLogger struct {
	file    *os.File
	encoder *cbor.Encoder

	mu     sync.RWMutex
	queue  chan Event
	closed bool
	done   chan struct{}

	dropped atomic.Uint64
}

// NewFileLogger creates a new FileLogger that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l := &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
		queue:   make(chan Event, DefaultFileQueueSize),
		done:    make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *FileLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		// Encoding errors are ignored; the journal must not disrupt the coordinator.
		_ = l.encoder.Encode(event)
	}
}

// Log queues an event for writing. Events logged after Close are ignored.
func (l *FileLogger) Log(event Event) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return
	}

	select {
	case l.queue <- event:
	default:
		l.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the queue was full.
func (l *FileLogger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close flushes queued events and closes the file.
// It is safe to call Close multiple times.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
