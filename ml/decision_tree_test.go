package ml

import (
	"errors"
	"testing"
)

// stump splits on feature 0 at 0.5: left leaf favours class 0, right leaf class 1.
func stump() []TreeNode {
	return []TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Value: []float64{3, 1}},
		{IsLeaf: true, Value: []float64{1, 4}},
	}
}

func TestDecisionTreePredict(t *testing.T) {
	tree, err := NewDecisionTree(stump(), []int{0, 1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	label, err := tree.Predict([]float64{0.1, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	proba, err := tree.PredictProba([]float64{0.1, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proba[0] != 0.75 || proba[1] != 0.25 {
		t.Fatalf("unexpected probabilities: %v", proba)
	}

	label, err = tree.Predict([]float64{0.9, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestDecisionTreeThresholdGoesLeft(t *testing.T) {
	tree, err := NewDecisionTree(stump(), []int{0, 1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, err := tree.Predict([]float64{0.5, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("value equal to threshold should go left, got label %d", label)
	}
}

func TestDecisionTreeRejectsWrongWidth(t *testing.T) {
	tree, err := NewDecisionTree(stump(), []int{0, 1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tree.Predict([]float64{0.1}); !errors.Is(err, ErrFeatureCount) {
		t.Fatalf("expected ErrFeatureCount, got %v", err)
	}
}

func TestNewDecisionTreeValidation(t *testing.T) {
	cases := map[string][]TreeNode{
		"empty":            nil,
		"child out of range": {{FeatureIdx: 0, LeftChild: 1, RightChild: 7}, {IsLeaf: true, Value: []float64{1, 1}}},
		"feature out of range": {
			{FeatureIdx: 5, LeftChild: 1, RightChild: 2},
			{IsLeaf: true, Value: []float64{1, 0}},
			{IsLeaf: true, Value: []float64{0, 1}},
		},
		"short leaf":    {{IsLeaf: true, Value: []float64{1}}},
		"negative leaf": {{IsLeaf: true, Value: []float64{-1, 2}}},
		"zero leaf":     {{IsLeaf: true, Value: []float64{0, 0}}},
	}
	for name, nodes := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewDecisionTree(nodes, []int{0, 1}, 2); !errors.Is(err, ErrInvalidModel) {
				t.Fatalf("expected ErrInvalidModel, got %v", err)
			}
		})
	}
}

func TestDecisionTreeDetectsCycle(t *testing.T) {
	nodes := []TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Value: []float64{1, 1}},
	}
	tree, err := NewDecisionTree(nodes, []int{0, 1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tree.Predict([]float64{0}); err == nil {
		t.Fatal("expected cycle error")
	}
}
