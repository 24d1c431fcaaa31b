package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
)

// BoostedTrees is a gradient-boosted ensemble of regression trees for binary
// classification. The summed leaf values form a logit margin; PredictProba
// applies the sigmoid. The trained model round-trips a CatBoost-style export:
// each tree is a flat node array, plus a base score and learning rate.
type BoostedTrees struct {
	BaseScore    float64 `json:"base_score"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	Rounds       int     `json:"rounds"`

	Trees [][]TreeNode `json:"trees"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	LeafValue  float64 `json:"leaf_value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func NewBoostedTrees(rounds, maxDepth int, learningRate float64) *BoostedTrees {
	if rounds <= 0 {
		rounds = 50
	}
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if learningRate <= 0 {
		learningRate = 0.1
	}
	return &BoostedTrees{
		LearningRate: learningRate,
		MaxDepth:     maxDepth,
		Rounds:       rounds,
	}
}

func (bt *BoostedTrees) PredictProba(features []float64) (float64, error) {
	if len(bt.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	margin := bt.BaseScore
	for _, tree := range bt.Trees {
		value, err := evalTree(tree, features)
		if err != nil {
			return 0, err
		}
		margin += bt.LearningRate * value
	}
	return sigmoid(margin), nil
}

func evalTree(nodes []TreeNode, features []float64) (float64, error) {
	if len(nodes) == 0 {
		return 0, errors.New("empty tree")
	}
	idx := 0
	for {
		node := nodes[idx]
		if node.IsLeaf {
			return node.LeafValue, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

// Train fits the ensemble with gradient boosting on the logistic loss.
// labels must be 0/1.
func (bt *BoostedTrees) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	for _, label := range labels {
		if label != 0 && label != 1 {
			return errors.New("labels must be binary")
		}
	}
	if bt.Rounds <= 0 {
		bt.Rounds = 50
	}
	if bt.MaxDepth <= 0 {
		bt.MaxDepth = 3
	}
	if bt.LearningRate <= 0 {
		bt.LearningRate = 0.1
	}

	positives := 0
	for _, label := range labels {
		positives += label
	}
	// log-odds of the base rate, clamped away from degenerate all-0/all-1 sets
	rate := (float64(positives) + 0.5) / (float64(len(labels)) + 1.0)
	bt.BaseScore = math.Log(rate / (1 - rate))

	margins := make([]float64, len(labels))
	for i := range margins {
		margins[i] = bt.BaseScore
	}

	bt.Trees = nil
	gradients := make([]float64, len(labels))
	hessians := make([]float64, len(labels))
	for round := 0; round < bt.Rounds; round++ {
		for i := range labels {
			p := sigmoid(margins[i])
			gradients[i] = float64(labels[i]) - p
			hessians[i] = p * (1 - p)
		}

		indexes := make([]int, len(labels))
		for i := range indexes {
			indexes[i] = i
		}
		tree := buildRegressionNode(features, gradients, hessians, indexes, 0, bt.MaxDepth)
		bt.Trees = append(bt.Trees, tree)

		for i := range margins {
			value, err := evalTree(tree, features[i])
			if err != nil {
				return err
			}
			margins[i] += bt.LearningRate * value
		}
	}
	return nil
}

func (bt *BoostedTrees) Save(path string) error {
	if len(bt.Trees) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(bt)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (bt *BoostedTrees) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded BoostedTrees
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Trees) == 0 {
		return errors.New("model file contains no trees")
	}
	*bt = loaded
	return nil
}

// buildRegressionNode flattens the subtree into a node array: root first,
// then the left subtree, then the right.
func buildRegressionNode(features [][]float64, gradients, hessians []float64, indexes []int, depth, maxDepth int) []TreeNode {
	leaf := TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		LeafValue:  newtonLeafValue(gradients, hessians, indexes),
		IsLeaf:     true,
	}
	if depth >= maxDepth || len(indexes) < 4 {
		return []TreeNode{leaf}
	}

	bestFeature, threshold, ok := findBestRegressionSplit(features, gradients, indexes)
	if !ok {
		return []TreeNode{leaf}
	}

	leftIdx := make([]int, 0, len(indexes))
	rightIdx := make([]int, 0, len(indexes))
	for _, i := range indexes {
		if features[i][bestFeature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return []TreeNode{leaf}
	}

	leftNodes := buildRegressionNode(features, gradients, hessians, leftIdx, depth+1, maxDepth)
	rightNodes := buildRegressionNode(features, gradients, hessians, rightIdx, depth+1, maxDepth)

	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		IsLeaf:     false,
	}

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

func findBestRegressionSplit(features [][]float64, gradients []float64, indexes []int) (int, float64, bool) {
	if len(indexes) == 0 {
		return -1, 0, false
	}
	featureCount := len(features[indexes[0]])
	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.Inf(-1)

	totalSum := 0.0
	for _, i := range indexes {
		totalSum += gradients[i]
	}

	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		values := make([]float64, len(indexes))
		for j, i := range indexes {
			values[j] = features[i][featureIdx]
		}
		threshold := median(values)

		leftSum, leftCount := 0.0, 0
		for _, i := range indexes {
			if features[i][featureIdx] <= threshold {
				leftSum += gradients[i]
				leftCount++
			}
		}
		rightCount := len(indexes) - leftCount
		if leftCount == 0 || rightCount == 0 {
			continue
		}
		rightSum := totalSum - leftSum

		// split gain: variance reduction of the gradient targets
		score := leftSum*leftSum/float64(leftCount) + rightSum*rightSum/float64(rightCount)
		if score > bestScore {
			bestScore = score
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func newtonLeafValue(gradients, hessians []float64, indexes []int) float64 {
	gradSum := 0.0
	hessSum := 0.0
	for _, i := range indexes {
		gradSum += gradients[i]
		hessSum += hessians[i]
	}
	if hessSum < 1e-9 {
		return 0
	}
	value := gradSum / hessSum
	if value > 4 {
		value = 4
	}
	if value < -4 {
		value = -4
	}
	return value
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sortFloats(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func sortFloats(values []float64) {
	for i := 1; i < len(values); i++ {
		j := i
		for j > 0 && values[j-1] > values[j] {
			values[j-1], values[j] = values[j], values[j-1]
			j--
		}
	}
}
