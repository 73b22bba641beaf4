package session

import (
	"fmt"
	"os"
)

// Record is one question and its outcome as kept in the transcript.
type Record struct {
	Question string
	SQL      string
	Result   string
}

func (r Record) String() string {
	return fmt.Sprintf("Q: %s\nSQL: %s\nResult: %s\n\n", r.Question, r.SQL, r.Result)
}

// Transcript is an append-only text log of records.
type Transcript struct {
	Path string
}

// Append opens the log, writes record in a single call and closes it again.
func (t Transcript) Append(record Record) error {
	file, err := os.OpenFile(t.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	if _, err := file.WriteString(record.String()); err != nil {
		_ = file.Close()
		return fmt.Errorf("write transcript: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close transcript: %w", err)
	}
	return nil
}
