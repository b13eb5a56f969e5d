package telemetry

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

// Replay is a Source reading a JSONL recording. Each line is one of
//
//	{"info": {...}, "after_ms": 250}
//	{"events": [{"name": "kill", "data": "..."}], "after_ms": 0}
//
// after_ms delays the line relative to the previous one. Blank lines and
// lines starting with '#' are skipped.
type Replay struct {
	r     io.Reader
	speed float64
}

// NewReplay reads lines from r. speed scales delays; 0 disables them.
func NewReplay(r io.Reader, speed float64) *Replay {
	return &Replay{r: r, speed: speed}
}

// OpenReplay opens a recording file. The caller closes the returned file.
func OpenReplay(path string, speed float64) (*Replay, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open replay: %w", err)
	}
	return NewReplay(f, speed), f, nil
}

// Run delivers every line to h. Malformed lines are logged and skipped.
func (r *Replay) Run(ctx context.Context, h Handler) error {
	sc := bufio.NewScanner(r.r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	n := 0
	for sc.Scan() {
		n++
		line := sc.Bytes()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if !gjson.ValidBytes(line) {
			slog.Warn("replay: malformed line", "line", n)
			continue
		}

		if err := r.wait(ctx, gjson.GetBytes(line, "after_ms").Int()); err != nil {
			return nil
		}

		if info := gjson.GetBytes(line, "info"); info.Exists() {
			h.HandleInfo([]byte(info.Raw))
			continue
		}
		if raw := gjson.GetBytes(line, "events"); raw.IsArray() {
			var events []Event
			if err := json.Unmarshal([]byte(raw.Raw), &events); err != nil {
				slog.Warn("replay: decode events", "line", n, "error", err)
				continue
			}
			h.HandleEvents(events)
			continue
		}
		slog.Warn("replay: line has neither info nor events", "line", n)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read replay: %w", err)
	}
	return nil
}

func (r *Replay) wait(ctx context.Context, ms int64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if ms <= 0 || r.speed <= 0 {
		return nil
	}
	t := time.NewTimer(time.Duration(float64(ms) / r.speed * float64(time.Millisecond)))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
