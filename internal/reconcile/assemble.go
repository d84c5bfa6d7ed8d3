package reconcile

import (
	"sort"

	"PopulationSnapshot/internal/domain"
)

// Inputs carries every per-source result the assembler joins.
type Inputs struct {
	Population map[string]domain.PopulationObservation
	Crosswalk  Crosswalk
	Flags      domain.FlagEmojis
	Capitals   map[string]domain.CapitalInfo
	Leaders    map[string]domain.Leader
}

// Assemble joins the sources into one record per country keyed by M49.
// A country without an M49 code is left out; every other missing enrichment only leaves a field absent.
// Countries are joined in alpha-3 order so that two codes sharing an M49 code resolve the same way every run.
func (e *Engine) Assemble(in Inputs) domain.Snapshot {
	iso3s := make([]string, 0, len(in.Population))
	for iso3 := range in.Population {
		iso3s = append(iso3s, iso3)
	}
	sort.Strings(iso3s)

	records := make(map[string]domain.CountryRecord, len(in.Population))
	for _, iso3 := range iso3s {
		obs := in.Population[iso3]
		code, ok := in.Crosswalk.Code(iso3)
		if !ok {
			e.skip(ComponentAssembler, "missing_m49", "iso3", iso3)
			continue
		}

		record := domain.CountryRecord{
			M49:        code.M49,
			ISO3:       obs.ISO3,
			Name:       obs.Name,
			Population: obs.Population,
			Year:       obs.Year,
			ISO2:       code.ISO2,
		}

		if capital, ok := in.Capitals[iso3]; ok {
			record.Capital = domain.Some(capital)
		}

		if iso2, ok := code.ISO2.Get(); ok {
			if emoji := in.Flags[iso2]; emoji != "" {
				record.FlagEmoji = domain.Some(emoji)
			}
			if leader, ok := in.Leaders[iso2]; ok {
				record.Leader = domain.Some(leader)
			}
		}

		records[code.M49] = record
	}

	snapshot := domain.NewSnapshot(records)
	e.debug("snapshot assembled", "countries", snapshot.Len())
	return snapshot
}
