// Package report writes simulation results: the per-game CSV table, a text
// summary, a JSON summary file and a FlatBuffers batch encoding.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/signalnine/warsim/game"
	"github.com/signalnine/warsim/simulation"
)

// Header returns the CSV column names: one count per rank, then turns, ties
// and the Win/Lose column (0 = A wins, 1 = B wins, -1 = aborted).
func Header() []string {
	header := make([]string, 0, game.NumRanks+3)
	for _, r := range game.Ranks() {
		header = append(header, "Num "+r.Plural())
	}
	return append(header, "Num Turns", "Num Ties", "Win/Lose")
}

// Row renders one game as CSV fields
func Row(res game.GameResult) []string {
	row := make([]string, 0, game.NumRanks+3)
	for _, n := range res.RankCounts {
		row = append(row, strconv.Itoa(n))
	}
	return append(row,
		strconv.Itoa(res.Turns),
		strconv.Itoa(res.Ties),
		strconv.Itoa(int(res.Outcome)),
	)
}

// WriteCSV writes a header and one row per record
func WriteCSV(w io.Writer, records []simulation.GameRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec.GameResult)); err != nil {
			return fmt.Errorf("write csv row %d: %w", rec.SimID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the CSV table to path, creating parent directories
func WriteCSVFile(path string, records []simulation.GameRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
