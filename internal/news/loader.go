package news

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"newslens/internal/models"
)

// Required columns of the news table. Extra columns are ignored.
var requiredColumns = []string{"headline", "url", "publisher", "date", "stock"}

// SchemaError reports required columns missing from the input table.
// It is fatal: the pipeline cannot proceed without them.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("news table missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Timestamp layouts tried in order. Naive layouts are interpreted as UTC;
// the source dataset carries UTC-4 offsets, which the offset layouts cover.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Result is the cleaned news table plus the number of rows dropped for
// unparseable timestamps. The drop is a tolerated data-quality policy, not
// an error, but the count is surfaced so callers can log it.
type Result struct {
	Records []models.NewsRecord
	Dropped int
}

// LoadFile reads and cleans the news CSV at path.
func LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads a news table from r. The header row resolves column positions,
// so column order is free. Rows whose date fails every layout are dropped
// and counted; stock symbols are upper-cased and trimmed.
func Load(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Result{}, &SchemaError{Missing: missing}
	}

	var out Result
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read row: %w", err)
		}

		ts, ok := parseTimestamp(field(row, idx["date"]))
		if !ok {
			out.Dropped++
			continue
		}

		rec := models.NewsRecord{
			Headline:    field(row, idx["headline"]),
			URL:         field(row, idx["url"]),
			Publisher:   field(row, idx["publisher"]),
			PublishedAt: ts,
			Day:         models.DayOf(ts),
			Stock:       strings.ToUpper(strings.TrimSpace(field(row, idx["stock"]))),
		}
		out.Records = append(out.Records, rec)
	}

	return out, nil
}

func parseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
