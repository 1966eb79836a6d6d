package foodagent

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// DispatchLogger records how each recommendation request was routed.
type DispatchLogger interface {
	LogDispatch(entry DispatchLog) error
}

// NewDispatchLogFilePath returns a timestamped file path for a dispatch log.
func NewDispatchLogFilePath(dir string) string {
	return fmt.Sprintf("%s/%d.dispatch.json", dir, time.Now().Unix())
}

// DispatchLog describes a single coordinator call.
type DispatchLog struct {
	Timestamp      time.Time     `json:"timestamp"`
	Query          string        `json:"query"`
	Mode           string        `json:"mode"`
	RequestedAgent string        `json:"requested_agent,omitempty"`
	Responders     []string      `json:"responders"`
	Fallback       bool          `json:"fallback"`
	ProductCount   int           `json:"product_count"`
	MealCount      int           `json:"meal_count"`
	Duration       time.Duration `json:"duration_ns"`
}

// FileDispatchLogger accumulates entries and writes them out on Flush.
type FileDispatchLogger struct {
	entries []DispatchLog
	writer  io.Writer
}

func NewFileDispatchLogger(writer io.Writer) *FileDispatchLogger {
	return &FileDispatchLogger{
		entries: make([]DispatchLog, 0),
		writer:  writer,
	}
}

// LogDispatch buffers the entry; nothing is written until Flush.
func (l *FileDispatchLogger) LogDispatch(entry DispatchLog) error {
	l.entries = append(l.entries, entry)
	return nil
}

func (l *FileDispatchLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"dispatch_session": map[string]any{
			"timestamp":  time.Now(),
			"dispatches": l.entries,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write dispatch log: %w", err)
	}

	l.entries = l.entries[:0]
	return nil
}

type NoOpDispatchLogger struct{}

func NewNoOpDispatchLogger() *NoOpDispatchLogger {
	return &NoOpDispatchLogger{}
}

func (nop *NoOpDispatchLogger) LogDispatch(entry DispatchLog) error {
	return nil
}

// StdoutDispatchLogger writes each entry as a JSON line (Lambda/CloudWatch).
type StdoutDispatchLogger struct {
	out io.Writer
}

func NewStdoutDispatchLogger() *StdoutDispatchLogger {
	return &StdoutDispatchLogger{out: os.Stdout}
}

func (l *StdoutDispatchLogger) LogDispatch(entry DispatchLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
