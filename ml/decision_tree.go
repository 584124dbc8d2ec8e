package ml

import (
    "errors"
    "fmt"
    "math"
)

type DecisionTree struct {
    nodes       []TreeNode
    classes     []int
    numFeatures int
}

// TreeNode is one entry of a flattened tree. Children are indices into the
// same slice; a sample goes left when features[FeatureIdx] <= Threshold.
type TreeNode struct {
    FeatureIdx int       `json:"feature_idx"`
    Threshold  float64   `json:"threshold"`
    LeftChild  int       `json:"left_child"`
    RightChild int       `json:"right_child"`
    IsLeaf     bool      `json:"is_leaf"`
    Value      []float64 `json:"value,omitempty"`
}

func NewDecisionTree(nodes []TreeNode, classes []int, numFeatures int) (*DecisionTree, error) {
    if len(nodes) == 0 {
        return nil, fmt.Errorf("%w: tree has no nodes", ErrInvalidModel)
    }
    if len(classes) < 2 {
        return nil, fmt.Errorf("%w: need at least two classes, got %d", ErrInvalidModel, len(classes))
    }
    if numFeatures <= 0 {
        return nil, fmt.Errorf("%w: feature count must be positive", ErrInvalidModel)
    }
    for i, node := range nodes {
        if err := validateNode(node, len(nodes), len(classes), numFeatures); err != nil {
            return nil, fmt.Errorf("%w: node %d: %v", ErrInvalidModel, i, err)
        }
    }
    return &DecisionTree{
        nodes:       append([]TreeNode(nil), nodes...),
        classes:     append([]int(nil), classes...),
        numFeatures: numFeatures,
    }, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
    proba, err := dt.PredictProba(features)
    if err != nil {
        return 0, err
    }
    return dt.classes[argmax(proba)], nil
}

func (dt *DecisionTree) PredictProba(features []float64) ([]float64, error) {
    leaf, err := dt.leaf(features)
    if err != nil {
        return nil, err
    }
    return normalize(leaf.Value), nil
}

func (dt *DecisionTree) NumFeatures() int {
    return dt.numFeatures
}

func (dt *DecisionTree) Classes() []int {
    return append([]int(nil), dt.classes...)
}

func (dt *DecisionTree) leaf(features []float64) (*TreeNode, error) {
    if len(dt.nodes) == 0 {
        return nil, errors.New("model not loaded")
    }
    if len(features) != dt.numFeatures {
        return nil, fmt.Errorf("%w: expected %d, got %d", ErrFeatureCount, dt.numFeatures, len(features))
    }
    idx := 0
    // a well-formed tree reaches a leaf in fewer steps than it has nodes
    for step := 0; step <= len(dt.nodes); step++ {
        node := &dt.nodes[idx]
        if node.IsLeaf {
            return node, nil
        }
        if features[node.FeatureIdx] <= node.Threshold {
            idx = node.LeftChild
        } else {
            idx = node.RightChild
        }
    }
    return nil, errors.New("invalid tree state: cycle detected")
}

func validateNode(node TreeNode, nodeCount, classCount, numFeatures int) error {
    if node.IsLeaf {
        if len(node.Value) != classCount {
            return fmt.Errorf("leaf has %d values, want %d", len(node.Value), classCount)
        }
        total := 0.0
        for _, v := range node.Value {
            if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
                return fmt.Errorf("leaf value %v out of range", v)
            }
            total += v
        }
        if total <= 0 {
            return errors.New("leaf values sum to zero")
        }
        return nil
    }
    if node.FeatureIdx < 0 || node.FeatureIdx >= numFeatures {
        return fmt.Errorf("feature index %d out of range", node.FeatureIdx)
    }
    if node.LeftChild <= 0 || node.LeftChild >= nodeCount {
        return fmt.Errorf("left child %d out of range", node.LeftChild)
    }
    if node.RightChild <= 0 || node.RightChild >= nodeCount {
        return fmt.Errorf("right child %d out of range", node.RightChild)
    }
    if math.IsNaN(node.Threshold) {
        return errors.New("threshold is NaN")
    }
    return nil
}

func normalize(values []float64) []float64 {
    total := 0.0
    for _, v := range values {
        total += v
    }
    result := make([]float64, len(values))
    for i, v := range values {
        result[i] = v / total
    }
    return result
}

// argmax returns the first index holding the maximum, so ties resolve to the lower class.
func argmax(values []float64) int {
    best := 0
    for i := 1; i < len(values); i++ {
        if values[i] > values[best] {
            best = i
        }
    }
    return best
}
