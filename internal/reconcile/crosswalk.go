package reconcile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"PopulationSnapshot/internal/domain"
)

const m49Width = 3

// Header spellings seen across releases of the country-codes table, in preference order.
var (
	alpha3Columns = []string{"ISO3166-1-Alpha-3", "ISO3166-1-Alpha-3 Code", "ISO3166-1-Alpha-3-code"}
	alpha2Columns = []string{"ISO3166-1-Alpha-2", "ISO3166-1-Alpha-2 Code", "ISO3166-1-Alpha-2-code"}
	m49Columns    = []string{"M49", "M49 Code"}
)

// Crosswalk translates alpha-3 codes into M49 and alpha-2 codes.
type Crosswalk struct {
	m49  map[string]string
	iso2 map[string]string
}

// NewCrosswalk builds a crosswalk from prepared maps. Keys are alpha-3 codes.
func NewCrosswalk(m49, iso2 map[string]string) Crosswalk {
	if m49 == nil {
		m49 = map[string]string{}
	}
	if iso2 == nil {
		iso2 = map[string]string{}
	}
	return Crosswalk{m49: m49, iso2: iso2}
}

// M49 returns the zero-padded numeric code for an alpha-3 code.
func (c Crosswalk) M49(iso3 string) (string, bool) {
	code, ok := c.m49[iso3]
	return code, ok && code != ""
}

// ISO2 returns the alpha-2 code for an alpha-3 code when the table has one.
func (c Crosswalk) ISO2(iso3 string) domain.Optional[string] {
	if code, ok := c.iso2[iso3]; ok && code != "" {
		return domain.Some(code)
	}
	return domain.None[string]()
}

// Code bundles every identifier known for iso3. It reports false without an M49 code.
func (c Crosswalk) Code(iso3 string) (domain.CountryCode, bool) {
	m49, ok := c.M49(iso3)
	if !ok {
		return domain.CountryCode{}, false
	}
	return domain.CountryCode{ISO3: iso3, ISO2: c.ISO2(iso3), M49: m49}, true
}

// Len returns the number of alpha-3 codes with an M49 code.
func (c Crosswalk) Len() int {
	return len(c.m49)
}

// ParseCrosswalk reads the country-codes CSV. Rows need an alpha-3 code and an all-digit M49 code;
// the alpha-2 code is kept when it is exactly two characters. Later rows replace earlier ones.
func (e *Engine) ParseCrosswalk(text string) (Crosswalk, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewCrosswalk(nil, nil), nil
		}
		return Crosswalk{}, fmt.Errorf("read crosswalk header: %w", err)
	}
	columns := indexColumns(header)

	cw := NewCrosswalk(nil, nil)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			e.skip(ComponentCrosswalk, "malformed_row", "line", line, "error", err)
			continue
		}
		if err != nil {
			return Crosswalk{}, fmt.Errorf("read crosswalk line %d: %w", line, err)
		}

		iso3 := strings.ToUpper(lookupFirst(row, columns, alpha3Columns))
		m49 := lookupFirst(row, columns, m49Columns)
		iso2 := lookupFirst(row, columns, alpha2Columns)

		if iso3 == "" || m49 == "" {
			e.skip(ComponentCrosswalk, "missing_code", "line", line)
			continue
		}
		if !isDigits(m49) {
			e.skip(ComponentCrosswalk, "non_numeric_m49", "line", line, "iso3", iso3, "m49", m49)
			continue
		}

		cw.m49[iso3] = padM49(m49)
		if len(iso2) == 2 {
			cw.iso2[iso3] = strings.ToUpper(iso2)
		}
	}

	e.debug("crosswalk parsed", "codes", cw.Len())
	return cw, nil
}

// lookupFirst returns the first non-empty trimmed value among the candidate columns.
func lookupFirst(row []string, columns map[string]int, candidates []string) string {
	for _, name := range candidates {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[idx]); value != "" {
			return value
		}
	}
	return ""
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func padM49(code string) string {
	if len(code) >= m49Width {
		return code
	}
	return strings.Repeat("0", m49Width-len(code)) + code
}
