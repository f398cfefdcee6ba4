package cluster

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGroupProfilesSimilarStatesTogether(t *testing.T) {
	// CA and TX share a near-identical weapon mix; VT is dominated by a
	// different category and must land in its own group.
	profiles := []Profile{
		{Label: "CA", Vector: []float64{0.60, 0.20, 0.05, 0.05, 0.10, 0.00}},
		{Label: "TX", Vector: []float64{0.58, 0.22, 0.05, 0.05, 0.10, 0.00}},
		{Label: "VT", Vector: []float64{0.05, 0.05, 0.10, 0.20, 0.60, 0.00}},
	}

	groups := GroupProfiles(profiles, 0.25)

	want := []Group{
		{Labels: []string{"CA", "TX"}},
		{Labels: []string{"VT"}},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestGroupProfilesSingleton(t *testing.T) {
	groups := GroupProfiles([]Profile{{Label: "NY", Vector: []float64{1, 0}}}, 0.25)
	if len(groups) != 1 || len(groups[0].Labels) != 1 || groups[0].Labels[0] != "NY" {
		t.Errorf("expected single singleton group, got %v", groups)
	}
}

func TestGroupProfilesEmpty(t *testing.T) {
	if groups := GroupProfiles(nil, 0.25); groups != nil {
		t.Errorf("expected nil for no profiles, got %v", groups)
	}
}

func TestGroupProfilesTinyThresholdSeparatesAll(t *testing.T) {
	profiles := []Profile{
		{Label: "A", Vector: []float64{1, 0}},
		{Label: "B", Vector: []float64{0, 1}},
		{Label: "C", Vector: []float64{-1, 0}},
	}
	groups := GroupProfiles(profiles, 0.0001)
	if len(groups) != 3 {
		t.Errorf("expected 3 singleton groups, got %v", groups)
	}
}

func TestGroupProfilesDeterministicOrder(t *testing.T) {
	profiles := []Profile{
		{Label: "WY", Vector: []float64{0.5, 0.5}},
		{Label: "AK", Vector: []float64{0.5, 0.5}},
		{Label: "MT", Vector: []float64{0.0, 1.0}},
	}
	first := GroupProfiles(profiles, 0.1)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, GroupProfiles(profiles, 0.1)); diff != "" {
			t.Fatalf("grouping not deterministic:\n%s", diff)
		}
	}
	// Groups ordered by first label.
	if first[0].Labels[0] != "AK" {
		t.Errorf("expected AK-led group first, got %v", first)
	}
}
