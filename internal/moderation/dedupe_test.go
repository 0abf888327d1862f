package moderation

import "testing"

var pool = []Candidate{
	{VenueID: 1, Name: "Casa Paquita", City: "Alcoy", MapURL: "https://maps.app/abc123"},
	{VenueID: 2, Name: "Bar Manolo", City: "Alcoy", MapURL: "https://maps.app/def456"},
	{VenueID: 3, Name: "Casa Paquita", City: "Valencia", MapURL: ""},
	{VenueID: 4, Name: "La Paquita del Puerto", City: "Alcoy", MapURL: "http://www.maps.app/abc123/"},
}

func TestMatchByMapURLExact(t *testing.T) {
	got := MatchByMapURL("https://maps.app/abc123", pool)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2 (scheme/slash variants collapse)", len(got))
	}
	for _, m := range got {
		if m.Rule != RuleMapURL {
			t.Errorf("rule = %q, want %q", m.Rule, RuleMapURL)
		}
	}
}

func TestMatchByMapURLEmptyNeverMatches(t *testing.T) {
	if got := MatchByMapURL("", pool); got != nil {
		t.Fatalf("empty URL matched %d candidates", len(got))
	}
	if got := MatchByMapURL("   ", pool); got != nil {
		t.Fatalf("blank URL matched %d candidates", len(got))
	}
}

func TestMatchByNameSameCityOnly(t *testing.T) {
	got := MatchByName("casa paquita", "Alcoy", pool)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Candidate.VenueID != 1 {
		t.Fatalf("matched venue %d, want 1 (Valencia venue excluded)", got[0].Candidate.VenueID)
	}
}

func TestMatchByNameSubstringBothDirections(t *testing.T) {
	// Proposal name contained in candidate name.
	if got := MatchByName("Paquita del", "Alcoy", pool); len(got) != 1 || got[0].Candidate.VenueID != 4 {
		t.Fatalf("substring match failed: %+v", got)
	}
	// Candidate name contained in proposal name.
	if got := MatchByName("Bar Manolo de la Plaza", "alcoy", pool); len(got) != 1 || got[0].Candidate.VenueID != 2 {
		t.Fatalf("reverse substring match failed: %+v", got)
	}
}

func TestFindDuplicatesRunsBothRules(t *testing.T) {
	got := FindDuplicates("Casa Paquita", "Alcoy", "https://maps.app/abc123", pool)

	var urlHits, nameHits int
	for _, m := range got {
		switch m.Rule {
		case RuleMapURL:
			urlHits++
		case RuleNameCity:
			nameHits++
		}
	}
	if urlHits != 2 || nameHits != 1 {
		t.Fatalf("url=%d name=%d, want 2 and 1", urlHits, nameHits)
	}
	if got[0].Rule != RuleMapURL {
		t.Fatal("URL matches should come first")
	}
}

func TestFindDuplicatesNoMatches(t *testing.T) {
	if got := FindDuplicates("Totally New Place", "Madrid", "https://maps.app/zzz", pool); len(got) != 0 {
		t.Fatalf("got %d matches, want 0", len(got))
	}
}
