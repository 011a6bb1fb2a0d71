package mapping

import "testing"

func TestCode_HasAtLeastOneHundredEntries(t *testing.T) {
	entries := Code()
	if len(entries) < 100 {
		t.Fatalf("expected at least 100 catalogue entries, got %d", len(entries))
	}
}

func TestCode_CanonicalIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Code() {
		if seen[m.CanonicalID] {
			t.Errorf("duplicate canonical_id: %s", m.CanonicalID)
		}
		seen[m.CanonicalID] = true
	}
}

func TestCode_1X2HasThreeOutcomesInOrder(t *testing.T) {
	for _, m := range Code() {
		if m.CanonicalID != "1X2_FT" {
			continue
		}
		if len(m.Outcomes) != 3 {
			t.Fatalf("expected 3 outcomes, got %d", len(m.Outcomes))
		}
		for i, o := range m.Outcomes {
			if o.Position != i {
				t.Errorf("outcome %s expected position %d, got %d", o.CanonicalOutcomeID, i, o.Position)
			}
		}
		return
	}
	t.Fatal("1X2_FT not found in catalogue")
}
