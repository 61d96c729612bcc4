package ranking

import "github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/types"

// BuildProfile converts ranked personas into the read shape served to API
// callers and persisted alongside responses.
func BuildProfile(assessmentID string, ranked []RankedPersona, top TopPersonas) types.Profile {
	profile := types.Profile{
		AssessmentID: assessmentID,
		Personas:     make([]types.PersonaEntry, 0, len(ranked)),
	}
	for _, p := range ranked {
		profile.Personas = append(profile.Personas, entry(&p, p.Emerging))
	}
	if top.Primary != nil {
		e := entry(top.Primary, top.Primary.Emerging)
		profile.Primary = &e
	}
	if top.Secondary != nil {
		e := entry(top.Secondary, top.Secondary.Emerging)
		profile.Secondary = &e
	}
	if top.Tertiary != nil {
		e := entry(top.Tertiary, top.Tertiary.Emerging)
		profile.Tertiary = &e
	}
	return profile
}

func entry(p *RankedPersona, emerging bool) types.PersonaEntry {
	return types.PersonaEntry{
		Rank:     p.Rank,
		Schema:   p.Schema,
		Index:    p.Index,
		Emerging: emerging,
	}
}
