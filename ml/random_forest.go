package ml

import "fmt"

// RandomForest averages the class probabilities of its trees, the way
// scikit-learn's RandomForestClassifier does for predict_proba.
type RandomForest struct {
	trees       []*DecisionTree
	classes     []int
	numFeatures int
}

func NewRandomForest(trees []*DecisionTree) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidModel)
	}
	first := trees[0]
	for i, tree := range trees[1:] {
		if tree.numFeatures != first.numFeatures || !sameClasses(tree.classes, first.classes) {
			return nil, fmt.Errorf("%w: tree %d disagrees with tree 0 on schema", ErrInvalidModel, i+1)
		}
	}
	return &RandomForest{
		trees:       trees,
		classes:     first.Classes(),
		numFeatures: first.numFeatures,
	}, nil
}

func (rf *RandomForest) Predict(features []float64) (int, error) {
	proba, err := rf.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return rf.classes[argmax(proba)], nil
}

func (rf *RandomForest) PredictProba(features []float64) ([]float64, error) {
	sum := make([]float64, len(rf.classes))
	for i, tree := range rf.trees {
		proba, err := tree.PredictProba(features)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		for c, p := range proba {
			sum[c] += p
		}
	}
	for c := range sum {
		sum[c] /= float64(len(rf.trees))
	}
	return sum, nil
}

func (rf *RandomForest) NumFeatures() int {
	return rf.numFeatures
}

func (rf *RandomForest) Classes() []int {
	return append([]int(nil), rf.classes...)
}

func (rf *RandomForest) NumTrees() int {
	return len(rf.trees)
}

func sameClasses(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
