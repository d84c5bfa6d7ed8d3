package reconcile

import (
	"strings"

	"PopulationSnapshot/internal/domain"
)

// SPARQL variables bound by the knowledge-base queries.
const (
	VarISO2         = "iso2"
	VarGovFormLabel = "govFormLabel"
	VarHoGLabel     = "hogLabel"
	VarHoGImage     = "hogImage"
	VarHoSLabel     = "hosLabel"
	VarHoSImage     = "hosImage"
)

// Candidate scores. Preferred office outranks having a portrait.
const (
	scoreNone               = -1
	scoreOtherRole          = 0
	scoreOtherRoleImage     = 1
	scorePreferredRole      = 2
	scorePreferredRoleImage = 3
)

// roleRules are evaluated in order against the whole set of government forms; the first hit wins.
var roleRules = []struct {
	fragment string
	role     domain.Role
}{
	{"semi-presidential", domain.RoleHeadOfState},
	{"presidential", domain.RoleHeadOfState},
	{"parliamentary", domain.RoleHeadOfGovernment},
	{"constitutional monarchy", domain.RoleHeadOfGovernment},
}

// DefaultPreferredRole applies when no government form matches.
const DefaultPreferredRole = domain.RoleHeadOfGovernment

// InferPreferredRole picks the office that usually leads a country with these government forms.
func InferPreferredRole(forms domain.GovernmentForms) domain.Role {
	for _, rule := range roleRules {
		for form := range forms {
			if strings.Contains(strings.ToLower(form), rule.fragment) {
				return rule.role
			}
		}
	}
	return DefaultPreferredRole
}

// PreferredRoles groups government form labels by alpha-2 code and infers the preferred role for each.
func (e *Engine) PreferredRoles(rows []domain.Binding) map[string]domain.Role {
	forms := make(map[string]domain.GovernmentForms)
	for _, row := range rows {
		iso2 := strings.ToUpper(row.Get(VarISO2))
		if len(iso2) != 2 {
			e.skip(ComponentLeaders, "invalid_iso2", "iso2", iso2)
			continue
		}
		label := row.Get(VarGovFormLabel)
		if label == "" {
			continue
		}
		set, ok := forms[iso2]
		if !ok {
			set = domain.GovernmentForms{}
			forms[iso2] = set
		}
		set.Add(label)
	}

	roles := make(map[string]domain.Role, len(forms))
	for iso2, set := range forms {
		roles[iso2] = InferPreferredRole(set)
	}
	return roles
}

// Selection is the best candidate of one binding row together with its score.
type Selection struct {
	Candidate domain.LeaderCandidate
	Score     int
}

// OrderCandidates lists the preferred office first.
func OrderCandidates(row domain.Binding, preferred domain.Role) []domain.LeaderCandidate {
	hog := domain.LeaderCandidate{
		Role:     domain.RoleHeadOfGovernment,
		Name:     row.Get(VarHoGLabel),
		ImageURL: row.Get(VarHoGImage),
	}
	hos := domain.LeaderCandidate{
		Role:     domain.RoleHeadOfState,
		Name:     row.Get(VarHoSLabel),
		ImageURL: row.Get(VarHoSImage),
	}
	if preferred == domain.RoleHeadOfState {
		return []domain.LeaderCandidate{hos, hog}
	}
	return []domain.LeaderCandidate{hog, hos}
}

// ScoreCandidate ranks a candidate: 3 preferred with image, 2 preferred, 1 other with image, 0 other.
func ScoreCandidate(c domain.LeaderCandidate, preferred domain.Role) int {
	isPreferred := c.Role == preferred
	hasImage := c.ImageURL != ""
	switch {
	case isPreferred && hasImage:
		return scorePreferredRoleImage
	case isPreferred:
		return scorePreferredRole
	case hasImage:
		return scoreOtherRoleImage
	default:
		return scoreOtherRole
	}
}

// SelectLeader returns the highest scoring named candidate. Candidates are evaluated in order and
// a later one must score strictly higher to win, so the preferred office wins ties.
func SelectLeader(candidates []domain.LeaderCandidate, preferred domain.Role) (Selection, bool) {
	best := Selection{Score: scoreNone}
	for _, c := range candidates {
		if c.Name == "" {
			continue
		}
		if score := ScoreCandidate(c, preferred); score > best.Score {
			best = Selection{Candidate: c, Score: score}
		}
	}
	return best, best.Score != scoreNone
}

// LeaderFold reduces selections from many rows to one per alpha-2 code by maximum score.
// On equal scores the first selection seen is kept.
type LeaderFold struct {
	selections map[string]Selection
}

// NewLeaderFold returns an empty fold.
func NewLeaderFold() *LeaderFold {
	return &LeaderFold{selections: map[string]Selection{}}
}

// Offer stores s for iso2 when no selection exists yet or s scores strictly higher.
// It reports whether s was stored.
func (f *LeaderFold) Offer(iso2 string, s Selection) bool {
	if current, ok := f.selections[iso2]; ok && s.Score <= current.Score {
		return false
	}
	f.selections[iso2] = s
	return true
}

// Selection returns the stored selection for iso2.
func (f *LeaderFold) Selection(iso2 string) (Selection, bool) {
	s, ok := f.selections[iso2]
	return s, ok
}

// Len returns the number of countries with a selection.
func (f *LeaderFold) Len() int {
	return len(f.selections)
}

// ResolveLeaders infers the preferred role per country from the government form rows, then folds
// the leader rows into one primary leader per alpha-2 code with sanitized portrait URLs.
func (e *Engine) ResolveLeaders(govFormRows, leaderRows []domain.Binding) map[string]domain.Leader {
	roles := e.PreferredRoles(govFormRows)

	fold := NewLeaderFold()
	for _, row := range leaderRows {
		iso2 := strings.ToUpper(row.Get(VarISO2))
		if len(iso2) != 2 {
			e.skip(ComponentLeaders, "invalid_iso2", "iso2", iso2)
			continue
		}

		preferred, ok := roles[iso2]
		if !ok {
			preferred = DefaultPreferredRole
		}

		selection, ok := SelectLeader(OrderCandidates(row, preferred), preferred)
		if !ok {
			e.skip(ComponentLeaders, "no_named_candidate", "iso2", iso2)
			continue
		}
		fold.Offer(iso2, selection)
	}

	leaders := make(map[string]domain.Leader, fold.Len())
	for iso2, s := range fold.selections {
		image := e.images.Sanitize(s.Candidate.ImageURL)
		if image == "" && s.Candidate.ImageURL != "" {
			e.skip(ComponentLeaders, "rejected_image", "iso2", iso2, "url", s.Candidate.ImageURL)
		}
		leaders[iso2] = domain.Leader{
			Name:     s.Candidate.Name,
			Role:     s.Candidate.Role,
			ImageURL: image,
			Source:   domain.LeaderSourceWikidata,
		}
	}

	e.debug("leaders resolved", "countries", len(leaders))
	return leaders
}
