package replay

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/voice-ci/engine/internal/session"
)

// LoadTimeline reads a JSONL file with one wire-format event per line.
// Blank lines are skipped; any malformed line aborts the load with its
// line number.
func LoadTimeline(path string) ([]session.VoiceEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []session.VoiceEvent
	scanner := bufio.NewScanner(f)
	// Transcript lines can be long; default token size is too small.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ev, err := session.ParseEvent([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return events, nil
}
