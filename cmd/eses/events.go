package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// eventRecord mirrors otel.Event for JSON decoding.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	RunID     string         `json:"run"`
	Rule      string         `json:"rule"`
	Pass      int            `json:"pass"`
	Row       *int           `json:"row"`
	Derived   []string       `json:"derived"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Source    string         `json:"source"`
	Query     string         `json:"query"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

type eventsOptions struct {
	tail    int
	follow  bool
	kind    string
	level   string
	comp    string
	run     string
	rawJSON bool
}

func (o eventsOptions) match(ev eventRecord) bool {
	if o.kind != "" && !strings.HasPrefix(ev.Kind, o.kind) {
		return false
	}
	if o.level != "" && levelRank(ev.Level) < levelRank(o.level) {
		return false
	}
	if o.comp != "" && ev.Comp != o.comp {
		return false
	}
	if o.run != "" && !strings.HasPrefix(ev.RunID, o.run) {
		return false
	}
	return true
}

func (o eventsOptions) format(ev eventRecord, raw []byte) string {
	if o.rawJSON {
		return string(raw)
	}
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-6s] %-15s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Rule != "" {
		parts = append(parts, fmt.Sprintf("%s pass=%d", ev.Rule, ev.Pass))
	}
	if ev.Row != nil {
		parts = append(parts, fmt.Sprintf("row=%d", *ev.Row))
	}
	if len(ev.Derived) > 0 {
		parts = append(parts, "-> "+strings.Join(ev.Derived, ","))
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Source != "" {
		parts = append(parts, "src="+ev.Source)
	}
	if ev.Query != "" {
		parts = append(parts, "q="+ev.Query)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	if ev.RunID != "" {
		parts = append(parts, "run="+truncate(ev.RunID, 8))
	}

	return strings.Join(parts, " ")
}

func (c *cli) eventsCmd() *cobra.Command {
	var opts eventsOptions

	cmd := &cobra.Command{
		Use:   "events",
		Short: "JSONL event log viewer",
		Long: `Prints the most recent events from ~/.eses/events.jsonl.

Examples:
  eses events --kind infer --tail 20
  eses events --run 3f2a --json
  eses events -f --level warn`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return c.runEvents(ctx, cmd.OutOrStdout(), opts)
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&opts.tail, "tail", "n", 50, "number of recent lines to show")
	fs.BoolVarP(&opts.follow, "follow", "f", false, "follow mode (like tail -f)")
	fs.StringVar(&opts.kind, "kind", "", "filter by event kind prefix (e.g. 'infer')")
	fs.StringVar(&opts.level, "level", "", "minimum level: debug, info, warn, error")
	fs.StringVar(&opts.comp, "comp", "", "filter by component name")
	fs.StringVar(&opts.run, "run", "", "filter by run ID prefix")
	fs.BoolVar(&opts.rawJSON, "json", false, "output raw JSON lines")
	return cmd
}

func (c *cli) runEvents(ctx context.Context, w io.Writer, opts eventsOptions) error {
	logPath := c.cfg.EventLogPath()

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("event log not found at %s (run eses first to generate events): %w", logPath, err)
	}
	defer f.Close()

	for _, l := range readTailLines(f, opts.tail, opts.match) {
		fmt.Fprintln(w, opts.format(l.ev, l.raw))
	}
	if !opts.follow {
		return nil
	}

	// The scanner consumed the file; keep reading appended lines.
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if opts.match(ev) {
			fmt.Fprintln(w, opts.format(ev, line))
		}
	}
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var ring []parsedLine
	if n > 0 {
		ring = make([]parsedLine, 0, n)
	}

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) || n <= 0 {
			continue
		}
		// scanner reuses its buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}

	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}

// truncate shortens a string to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
