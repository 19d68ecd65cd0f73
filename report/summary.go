package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/signalnine/warsim/simulation"
)

// SummaryVersion is the current summary file format version
const SummaryVersion = "1.0"

// Summary is the serialisable description of a finished batch
type Summary struct {
	RunID         string                     `json:"run_id,omitempty"`
	Policy        string                     `json:"policy"`
	Seed          int64                      `json:"seed"`
	Games         int                        `json:"games"`
	MaxIterations int                        `json:"max_iterations"` // -1 = no cap
	Elapsed       time.Duration              `json:"elapsed_ns"`
	Stats         simulation.AggregatedStats `json:"stats"`

	// Metadata
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// WriteSummary prints a human-readable summary
func WriteSummary(w io.Writer, s Summary) error {
	st := s.Stats
	pct := func(x float64) string { return fmt.Sprintf("%.2f%%", x*100) }

	bw := &errWriter{w: w}
	bw.printf("Games: %d (policy %s, seed %d)\n", st.TotalGames, s.Policy, s.Seed)
	if s.Elapsed > 0 {
		bw.printf("Elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
	}
	bw.printf("Win/Lose: A=%d (%s, 95%% CI %s-%s)  B=%d  aborted=%d\n",
		st.AWins, pct(st.AWinRate), pct(st.AWinRateLow), pct(st.AWinRateHigh), st.BWins, st.Aborted)
	bw.printf("Turns: mean %.1f  median %d  sd %.1f  max %d\n",
		st.AvgTurns, st.MedianTurns, st.StdDevTurns, st.MaxTurns)
	bw.printf("Ties: mean %.2f  max %d  tie rate %s  games with war %s  longest war %d\n",
		st.AvgTies, st.MaxTies, pct(st.TieRate), pct(st.WarShare), st.LongestWar)
	bw.printf("Reshuffles per game: %.1f\n", st.AvgReshuffles)
	if bw.err != nil {
		return bw.err
	}

	if len(st.ByAces) == 0 {
		return nil
	}
	bw.printf("\nBy aces dealt to A:\n")
	tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Aces\tGames\tA win%\tMean turns\tMean ties\t")
	for _, b := range st.ByAces {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.1f\t%.2f\t\n", b.Aces, b.Games, b.AWinRate*100, b.AvgTurns, b.AvgTies)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return bw.err
}

// SaveSummary writes the summary as JSON. The file is replaced atomically.
func SaveSummary(path string, s Summary) error {
	if s.Version == "" {
		s.Version = SummaryVersion
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}

	// Write to temp file first, then rename (atomic)
	tempPath := path + ".tmp"
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to finalize summary: %w", err)
	}

	return nil
}

// LoadSummary reads a summary written by SaveSummary
func LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &s, nil
}

// errWriter remembers the first write error so the summary lines can be
// printed without checking each one
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...interface{}) {
	fmt.Fprintf(e, format, args...)
}
