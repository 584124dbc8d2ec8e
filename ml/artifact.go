package ml

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const (
	ModelTypeDecisionTree = "decision_tree"
	ModelTypeRandomForest = "random_forest"
)

// Artifact is the on-disk form of a tree-based classifier.
type Artifact struct {
	ModelType    string         `json:"model_type"`
	FeatureNames []string       `json:"feature_names,omitempty"`
	NumFeatures  int            `json:"n_features,omitempty"`
	Classes      []int          `json:"classes"`
	Trees        []TreeArtifact `json:"trees"`
}

type TreeArtifact struct {
	Nodes []TreeNode `json:"nodes"`
}

func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var artifact Artifact
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return &artifact, nil
}

// Width reports the input width declared by the artifact.
func (a *Artifact) Width() int {
	if a.NumFeatures > 0 {
		return a.NumFeatures
	}
	return len(a.FeatureNames)
}

// Build turns the artifact into a classifier, validating every tree.
func (a *Artifact) Build() (Classifier, error) {
	width := a.Width()
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != width {
		return nil, fmt.Errorf("%w: %d feature names for %d features", ErrInvalidModel, len(a.FeatureNames), width)
	}
	trees := make([]*DecisionTree, 0, len(a.Trees))
	for i, t := range a.Trees {
		tree, err := NewDecisionTree(t.Nodes, a.Classes, width)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, tree)
	}

	switch a.ModelType {
	case ModelTypeDecisionTree:
		if len(trees) != 1 {
			return nil, fmt.Errorf("%w: decision_tree artifact holds %d trees", ErrInvalidModel, len(trees))
		}
		return trees[0], nil
	case ModelTypeRandomForest:
		return NewRandomForest(trees)
	default:
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrInvalidModel, a.ModelType)
	}
}

func (a *Artifact) Save(path string) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}
