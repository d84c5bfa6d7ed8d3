package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Snapshot is the immutable result of one build, ordered by M49 code.
type Snapshot struct {
	records []CountryRecord
}

// NewSnapshot orders records by their zero-padded M49 code.
func NewSnapshot(byM49 map[string]CountryRecord) Snapshot {
	records := make([]CountryRecord, 0, len(byM49))
	for code, record := range byM49 {
		record.M49 = code
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].M49 < records[j].M49 })
	return Snapshot{records: records}
}

// Len returns the number of countries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.records)
}

// Records returns a copy of the ordered records.
func (s Snapshot) Records() []CountryRecord {
	out := make([]CountryRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Keys returns the M49 codes in output order.
func (s Snapshot) Keys() []string {
	keys := make([]string, len(s.records))
	for i, record := range s.records {
		keys[i] = record.M49
	}
	return keys
}

// Lookup finds a record by M49 code.
func (s Snapshot) Lookup(m49 string) (CountryRecord, bool) {
	i := sort.Search(len(s.records), func(i int) bool { return s.records[i].M49 >= m49 })
	if i < len(s.records) && s.records[i].M49 == m49 {
		return s.records[i], true
	}
	return CountryRecord{}, false
}

// MarshalJSON writes the snapshot as an object keyed by M49, keys in ascending order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, record := range s.records {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(record.M49)
		if err != nil {
			return nil, err
		}
		value, err := record.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode renders the snapshot artifact: two-space indentation, unescaped UTF-8 and a trailing newline.
func (s Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
