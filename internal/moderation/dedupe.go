// Package moderation implements the advisory dedupe heuristic shown to
// admins reviewing a venue proposal. Matches never block an action; the
// reviewer decides whether to approve-as-existing, reject, or create the
// venue anyway.
package moderation

import "strings"

// Candidate is an existing venue compared against a proposal.
type Candidate struct {
	VenueID int64
	Name    string
	City    string
	MapURL  string
}

// Match is one dedupe hit with the rule that produced it.
type Match struct {
	Candidate Candidate
	Rule      string
}

const (
	RuleMapURL   = "map_url"
	RuleNameCity = "name_city"
)

// normalizeMapURL strips scheme and trailing slashes so that trivially
// different copies of the same map link still compare equal.
func normalizeMapURL(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimRight(s, "/")
}

// MatchByMapURL returns candidates whose map URL matches the proposal's
// exactly (after normalization). Empty URLs never match.
func MatchByMapURL(mapURL string, candidates []Candidate) []Match {
	key := normalizeMapURL(mapURL)
	if key == "" {
		return nil
	}

	var out []Match
	for _, c := range candidates {
		if normalizeMapURL(c.MapURL) == key {
			out = append(out, Match{Candidate: c, Rule: RuleMapURL})
		}
	}
	return out
}

// MatchByName returns candidates in the same city whose name contains
// the proposal's name, case-insensitively, or vice versa.
func MatchByName(name, city string, candidates []Candidate) []Match {
	needle := strings.ToLower(strings.TrimSpace(name))
	cityKey := strings.ToLower(strings.TrimSpace(city))
	if needle == "" {
		return nil
	}

	var out []Match
	for _, c := range candidates {
		if strings.ToLower(strings.TrimSpace(c.City)) != cityKey {
			continue
		}
		haystack := strings.ToLower(c.Name)
		if strings.Contains(haystack, needle) || strings.Contains(needle, haystack) {
			out = append(out, Match{Candidate: c, Rule: RuleNameCity})
		}
	}
	return out
}

// FindDuplicates runs both rules independently and concatenates the
// results, URL hits first. A venue matched by both rules appears twice,
// once per rule.
func FindDuplicates(name, city, mapURL string, candidates []Candidate) []Match {
	out := MatchByMapURL(mapURL, candidates)
	return append(out, MatchByName(name, city, candidates)...)
}
