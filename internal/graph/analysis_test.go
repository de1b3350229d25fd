package graph

import (
	"math"
	"reflect"
	"testing"
)

func TestDegreeCentrality(t *testing.T) {
	g := New()
	// Star: B, C, D all point at A.
	g.AddRelationship("B", "A", "is_related_to", 1, "")
	g.AddRelationship("C", "A", "is_related_to", 1, "")
	g.AddRelationship("D", "A", "is_related_to", 1, "")

	scores := DegreeCentrality{}.Scores(g)
	// A has degree 3 of a possible 2*(4-1)=6.
	if math.Abs(scores["A"]-0.5) > 1e-9 {
		t.Errorf("centrality(A) = %f, want 0.5", scores["A"])
	}
	if math.Abs(scores["B"]-1.0/6.0) > 1e-9 {
		t.Errorf("centrality(B) = %f, want 1/6", scores["B"])
	}
}

func TestDegreeCentralityEmptyAndSingle(t *testing.T) {
	g := New()
	if scores := (DegreeCentrality{}).Scores(g); len(scores) != 0 {
		t.Errorf("empty graph scores = %v", scores)
	}
	g.AddConcept("solo", "", "", nil)
	scores := DegreeCentrality{}.Scores(g)
	if scores["solo"] != 0 {
		t.Errorf("single node score = %f, want 0", scores["solo"])
	}
}

func TestConnectedComponentsFallback(t *testing.T) {
	g := New()
	g.AddRelationship("A", "B", "is_related_to", 1, "")
	g.AddRelationship("C", "D", "is_related_to", 1, "")
	g.AddConcept("E", "", "", nil)

	got := ConnectedComponentsFallback{}.Communities(g)
	want := [][]string{{"A", "B"}, {"C", "D"}, {"E"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("components = %v, want %v", got, want)
	}
}

func TestWeightedModularityGroupsCliques(t *testing.T) {
	g := New()
	// Two triangles joined by a single weak edge.
	g.AddRelationship("A", "B", "is_related_to", 1, "")
	g.AddRelationship("B", "C", "is_related_to", 1, "")
	g.AddRelationship("C", "A", "is_related_to", 1, "")
	g.AddRelationship("D", "E", "is_related_to", 1, "")
	g.AddRelationship("E", "F", "is_related_to", 1, "")
	g.AddRelationship("F", "D", "is_related_to", 1, "")
	g.AddRelationship("C", "D", "is_related_to", 0.1, "")

	got := WeightedModularity{}.Communities(g)
	want := [][]string{{"A", "B", "C"}, {"D", "E", "F"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("communities = %v, want %v", got, want)
	}
}

func TestWeightedModularityEdgelessFallsBack(t *testing.T) {
	g := New()
	g.AddConcept("A", "", "", nil)
	g.AddConcept("B", "", "", nil)

	got := WeightedModularity{}.Communities(g)
	want := [][]string{{"A"}, {"B"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("communities = %v, want %v", got, want)
	}
}

func TestNewCommunityAlgorithm(t *testing.T) {
	if _, ok := NewCommunityAlgorithm("modularity").(*WeightedModularity); !ok {
		t.Error("modularity should select WeightedModularity")
	}
	if _, ok := NewCommunityAlgorithm("components").(*ConnectedComponentsFallback); !ok {
		t.Error("components should select ConnectedComponentsFallback")
	}
	if _, ok := NewCommunityAlgorithm("").(*ConnectedComponentsFallback); !ok {
		t.Error("unknown name should select the fallback")
	}
}
