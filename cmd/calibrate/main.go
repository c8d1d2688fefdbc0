// Command calibrate runs the tide regime classifier against a reference table
// and reports every row whose computed regime differs from the expected one.
//
// The reference CSV has the header date,range_cm,lunar_age,expected. An empty
// lunar_age is computed from the date under the active calibration.
//
// Usage:
//
//	go run ./cmd/calibrate \
//	  -reference config/calibration_reference.csv \
//	  -config config/tidesync.yaml
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/config"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
)

var referenceHeader = []string{"date", "range_cm", "lunar_age", "expected"}

// referenceRow is one parsed line of the reference table.
type referenceRow struct {
	line     int
	date     civil.Date
	rangeCm  float64
	age      float64
	hasAge   bool
	expected domain.TideRegime
}

// mismatch is a row the classifier disagreed with.
type mismatch struct {
	row referenceRow
	age float64
	got domain.TideRegime
}

func main() {
	reference := flag.String("reference", "", "path to the reference CSV")
	configPath := flag.String("config", "", "YAML config whose calibration overrides the defaults (optional)")
	flag.Parse()

	if *reference == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *reference, *configPath); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, referencePath, configPath string) int {
	cal := domain.DefaultCalibration()
	if configPath != "" {
		file, err := config.LoadFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		cal = file.TideCalibration()
	}

	f, err := os.Open(referencePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	defer f.Close()

	rows, err := readReference(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", referencePath, err)
		return 1
	}

	misses := check(rows, cal)
	for _, m := range misses {
		fmt.Fprintf(w, "  line %d %s: range=%gcm age=%.2f expected %s, got %s\n",
			m.row.line, m.row.date, m.row.rangeCm, m.age, m.row.expected, m.got)
	}
	fmt.Fprintf(w, "%d rows, %d mismatches\n", len(rows), len(misses))
	if len(misses) > 0 {
		return 1
	}
	return 0
}

// readReference parses the reference table. The header must match exactly.
func readReference(r io.Reader) ([]referenceRow, error) {
	all, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errors.New("empty reference table")
	}
	if strings.Join(all[0], ",") != strings.Join(referenceHeader, ",") {
		return nil, fmt.Errorf("header %q, want %q", strings.Join(all[0], ","), strings.Join(referenceHeader, ","))
	}

	rows := make([]referenceRow, 0, len(all)-1)
	for i, rec := range all[1:] {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		row.line = i + 2
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (referenceRow, error) {
	var row referenceRow
	var err error

	if row.date, err = civil.ParseDate(strings.TrimSpace(rec[0])); err != nil {
		return row, fmt.Errorf("date: %w", domain.ErrInvalidDate)
	}
	if s := strings.TrimSpace(rec[1]); s != "" {
		if row.rangeCm, err = strconv.ParseFloat(s, 64); err != nil {
			return row, fmt.Errorf("range_cm: %w", err)
		}
	}
	if s := strings.TrimSpace(rec[2]); s != "" {
		if row.age, err = strconv.ParseFloat(s, 64); err != nil {
			return row, fmt.Errorf("lunar_age: %w", err)
		}
		row.hasAge = true
	}
	if row.expected, err = domain.ParseTideRegime(strings.TrimSpace(rec[3])); err != nil {
		return row, err
	}
	return row, nil
}

func check(rows []referenceRow, cal domain.Calibration) []mismatch {
	var misses []mismatch
	for _, row := range rows {
		age := row.age
		if !row.hasAge {
			age = cal.LunarAge(row.date)
		}
		if got := domain.Classify(row.rangeCm, age, cal); got != row.expected {
			misses = append(misses, mismatch{row: row, age: age, got: got})
		}
	}
	return misses
}
