package snapshot

// Record is one instrument's typed view of a snapshot row. Fields other
// than Code are optional: a nil pointer means the source had no usable
// value for that role.
type Record struct {
	Code      string
	Name      string
	Price     *float64
	PctChange *float64
	LimitUp   *float64
	LimitDown *float64
	PrevClose *float64
}

// ChangePct returns the percent change for the record. When the source
// exposed no percent-change column it is derived from the current price
// and the previous close; nil when neither is possible.
func (r Record) ChangePct() *float64 {
	if r.PctChange != nil {
		return r.PctChange
	}
	if r.Price != nil && r.PrevClose != nil && *r.PrevClose != 0 {
		pct := (*r.Price - *r.PrevClose) / *r.PrevClose * 100.0
		return &pct
	}
	return nil
}

// Snapshot is a normalized table keyed by canonical instrument code.
type Snapshot struct {
	records map[string]Record
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

func (s *Snapshot) Get(code string) (Record, bool) {
	rec, ok := s.records[code]
	return rec, ok
}

// Subset projects the snapshot onto the given watch-list, preserving
// watch-list order. Codes the snapshot does not carry are returned in
// missing rather than dropped silently.
func (s *Snapshot) Subset(codes []string) (records []Record, missing []string) {
	for _, code := range codes {
		if rec, ok := s.records[code]; ok {
			records = append(records, rec)
		} else {
			missing = append(missing, code)
		}
	}
	return records, missing
}
