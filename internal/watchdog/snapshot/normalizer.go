package snapshot

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoData marks a snapshot that cannot be normalized (empty table, or no
// column looks like an instrument-code column). Callers treat it as "skip
// this poll", not as a failure.
var ErrNoData = errors.New("snapshot: no usable data")

const (
	// codeSampleRows bounds how many rows the code-column detector inspects.
	codeSampleRows = 50
	// codeMatchThreshold is the minimum fraction of sampled values that must
	// look like a 6-digit code before a column is accepted.
	codeMatchThreshold = 0.5
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// ColumnMap holds the detected column index per semantic role, -1 when the
// role stayed unmapped.
type ColumnMap struct {
	Name      int
	Price     int
	Pct       int
	LimitUp   int
	LimitDown int
	PrevClose int
}

// Column labels vary by provider version and language, so roles are matched
// by keyword substring instead of exact names. First column containing any
// of a role's keywords wins.
var roleKeywords = []struct {
	assign   func(*ColumnMap, int)
	keywords []string
}{
	{func(m *ColumnMap, i int) { m.Name = i }, []string{"名称", "简称", "name"}},
	{func(m *ColumnMap, i int) { m.Price = i }, []string{"最新价", "最新", "现价", "price"}},
	{func(m *ColumnMap, i int) { m.Pct = i }, []string{"涨跌幅", "change_pct", "pct"}},
	{func(m *ColumnMap, i int) { m.LimitUp = i }, []string{"涨停价", "涨停"}},
	{func(m *ColumnMap, i int) { m.LimitDown = i }, []string{"跌停价", "跌停"}},
	{func(m *ColumnMap, i int) { m.PrevClose = i }, []string{"昨收盘", "昨收", "前收"}},
}

// DetectCodeColumn finds the column whose sampled values most often look
// like a 6-digit instrument code. Identifiers keep their shape across
// provider versions even when the column label changes, so content beats
// labels here. Returns ok=false when no column clears the threshold.
func DetectCodeColumn(t *Table) (int, bool) {
	if t.Empty() {
		return 0, false
	}

	sample := len(t.Rows)
	if sample > codeSampleRows {
		sample = codeSampleRows
	}

	bestIdx := -1
	bestScore := 0.0
	for col := range t.Columns {
		hits := 0
		for row := 0; row < sample; row++ {
			if codePattern.MatchString(cellString(t.Cell(row, col))) {
				hits++
			}
		}
		score := float64(hits) / float64(sample)
		if score > bestScore {
			bestScore = score
			bestIdx = col
		}
	}

	if bestIdx < 0 || bestScore < codeMatchThreshold {
		return 0, false
	}
	return bestIdx, true
}

// CanonicalCode renders a raw cell as a canonical 6-character zero-padded
// instrument code.
func CanonicalCode(v any) string {
	s := cellString(v)
	// Numeric cells may arrive as floats ("1234.0"); keep the integer part.
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		s = strconv.FormatInt(int64(f), 10)
	}
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

// MapColumns resolves the semantic roles against the table's column labels.
func MapColumns(t *Table) ColumnMap {
	m := ColumnMap{Name: -1, Price: -1, Pct: -1, LimitUp: -1, LimitDown: -1, PrevClose: -1}
	for _, role := range roleKeywords {
		for idx, label := range t.Columns {
			if containsAny(label, role.keywords) {
				role.assign(&m, idx)
				break
			}
		}
	}
	return m
}

func containsAny(label string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

// Coerce parses a loosely-typed cell as a float. Percent signs and thousands
// separators are stripped; placeholder tokens and unparsable input yield
// ok=false instead of an error. Coercing an already-numeric value is a no-op.
func Coerce(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}

	s := strings.TrimSpace(cellString(v))
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "", "-", "--", "nan", "none", "null":
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Normalize turns a raw table into a Snapshot keyed by canonical code.
// Returns ErrNoData when the table is empty or no code column is found.
func Normalize(t *Table) (*Snapshot, error) {
	codeCol, ok := DetectCodeColumn(t)
	if !ok {
		return nil, ErrNoData
	}

	cols := MapColumns(t)
	records := make(map[string]Record, len(t.Rows))
	for row := range t.Rows {
		code := CanonicalCode(t.Cell(row, codeCol))
		rec := Record{Code: code}
		if cols.Name >= 0 {
			rec.Name = cellString(t.Cell(row, cols.Name))
		}
		rec.Price = coerceCell(t, row, cols.Price)
		rec.PctChange = coerceCell(t, row, cols.Pct)
		rec.LimitUp = coerceCell(t, row, cols.LimitUp)
		rec.LimitDown = coerceCell(t, row, cols.LimitDown)
		rec.PrevClose = coerceCell(t, row, cols.PrevClose)
		records[code] = rec
	}

	return &Snapshot{records: records}, nil
}

func coerceCell(t *Table, row, col int) *float64 {
	if col < 0 {
		return nil
	}
	f, ok := Coerce(t.Cell(row, col))
	if !ok {
		return nil
	}
	return &f
}
