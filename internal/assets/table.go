package assets

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// daysEmployedSentinel is the upstream placeholder for "no employment
// record"; it is cleaned to missing at load so it never skews scores or
// plots.
const daysEmployedSentinel = 365243

const daysEmployedColumn = "DAYS_EMPLOYED"

// FeatureTable is the customer feature table, loaded once from CSV and
// read-only afterwards. Cells are float64 with NaN for missing.
type FeatureTable struct {
	idColumn string
	columns  []string
	ids      []int64
	rows     map[int64][]float64
	colIndex map[string]int
}

// ParseTable decodes a CSV feature table. The id column may appear at any
// position; remaining columns are features, kept in file order.
func ParseTable(b []byte, idColumn string) (*FeatureTable, error) {
	r := csv.NewReader(bytes.NewReader(b))
	r.ReuseRecord = false
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idPos := -1
	var columns []string
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == idColumn {
			idPos = i
			continue
		}
		columns = append(columns, h)
	}
	if idPos < 0 {
		return nil, fmt.Errorf("id column %q not in header", idColumn)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("feature table has no feature columns")
	}
	t := &FeatureTable{
		idColumn: idColumn,
		columns:  columns,
		rows:     make(map[int64][]float64),
		colIndex: make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.colIndex[c] = i
	}
	daysIdx, hasDays := t.colIndex[daysEmployedColumn]
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++
		if len(rec) != len(header) {
			return nil, fmt.Errorf("csv line %d: %d fields, want %d", line, len(rec), len(header))
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[idPos]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad id %q", line, rec[idPos])
		}
		if _, dup := t.rows[id]; dup {
			return nil, fmt.Errorf("csv line %d: duplicate id %d", line, id)
		}
		row := make([]float64, 0, len(columns))
		for i, cell := range rec {
			if i == idPos {
				continue
			}
			row = append(row, parseCell(cell))
		}
		if hasDays {
			row[daysIdx] = cleanDaysEmployed(row[daysIdx])
		}
		t.ids = append(t.ids, id)
		t.rows[id] = row
	}
	if len(t.ids) == 0 {
		return nil, fmt.Errorf("feature table has no rows")
	}
	return t, nil
}

func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" || s == "NaN" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func cleanDaysEmployed(v float64) float64 {
	if v == daysEmployedSentinel {
		return math.NaN()
	}
	return math.Abs(v)
}

// IDs returns all customer ids in table order. The slice is a copy.
func (t *FeatureTable) IDs() []int64 {
	out := make([]int64, len(t.ids))
	copy(out, t.ids)
	return out
}

// Len returns the number of customers.
func (t *FeatureTable) Len() int { return len(t.ids) }

// Columns returns the feature column names in table order. The slice is a copy.
func (t *FeatureTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether name is a feature column.
func (t *FeatureTable) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// Row returns the feature vector for id in table column order.
// Callers must not mutate the returned slice.
func (t *FeatureTable) Row(id int64) ([]float64, bool) {
	row, ok := t.rows[id]
	return row, ok
}

// Value returns one cell; NaN with ok=true means present-but-missing.
func (t *FeatureTable) Value(id int64, column string) (float64, bool) {
	i, ok := t.colIndex[column]
	if !ok {
		return math.NaN(), false
	}
	row, ok := t.rows[id]
	if !ok {
		return math.NaN(), false
	}
	return row[i], true
}

// Select returns the row projected onto the requested columns, aligned to
// the model's column order when cols differ from table order. Unknown
// columns yield NaN.
func (t *FeatureTable) Select(id int64, cols []string) ([]float64, bool) {
	row, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(cols))
	for i, c := range cols {
		if j, ok := t.colIndex[c]; ok {
			out[i] = row[j]
		} else {
			out[i] = math.NaN()
		}
	}
	return out, true
}
