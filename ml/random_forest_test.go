package ml

import (
	"errors"
	"math"
	"testing"
)

func TestRandomForestAveragesTrees(t *testing.T) {
	a, err := NewDecisionTree(stump(), []int{0, 1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewDecisionTree([]TreeNode{{IsLeaf: true, Value: []float64{0, 2}}}, []int{0, 1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	forest, err := NewRandomForest([]*DecisionTree{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// left leaf of a gives [0.75 0.25], b always gives [0 1]
	proba, err := forest.PredictProba([]float64{0.2, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(proba[0]-0.375) > 1e-9 || math.Abs(proba[1]-0.625) > 1e-9 {
		t.Fatalf("unexpected probabilities: %v", proba)
	}
	label, err := forest.Predict([]float64{0.2, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
	if forest.NumTrees() != 2 || forest.NumFeatures() != 2 {
		t.Fatalf("unexpected forest shape: %d trees, %d features", forest.NumTrees(), forest.NumFeatures())
	}
}

func TestRandomForestTieGoesToLowerClass(t *testing.T) {
	tree, err := NewDecisionTree([]TreeNode{{IsLeaf: true, Value: []float64{5, 5}}}, []int{0, 1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	forest, err := NewRandomForest([]*DecisionTree{tree})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, err := forest.Predict([]float64{3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected tie to resolve to class 0, got %d", label)
	}
}

func TestRandomForestSchemaMismatch(t *testing.T) {
	a, _ := NewDecisionTree(stump(), []int{0, 1}, 2)
	b, _ := NewDecisionTree(stump(), []int{0, 1}, 3)
	if _, err := NewRandomForest([]*DecisionTree{a, b}); !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
	if _, err := NewRandomForest(nil); !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
}
