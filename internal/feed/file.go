package feed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// FileSource reads JSONL event envelopes from a file, one per line.
// Used for replay and backfill runs.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed event source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Subscribe streams the file's events in file order. The channel is
// closed at EOF; a malformed line terminates the stream early.
func (s *FileSource) Subscribe(ctx context.Context) (<-chan Item, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open event file: %w", err)
	}

	ch := make(chan Item)
	go func() {
		defer close(ch)
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			event, err := DecodeEnvelope([]byte(line))
			if err != nil {
				select {
				case ch <- Item{Err: fmt.Errorf("line %d: %w", lineNo, err)}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case ch <- Item{Event: event}:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case ch <- Item{Err: fmt.Errorf("read event file: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}
