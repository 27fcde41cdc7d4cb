// Package tree implements a small CART decision tree classifier, the one the
// stock level labelling is trained with.
//
// Splits minimize the Gini impurity. Candidate thresholds are the midpoints
// between consecutive distinct values of a feature, features and thresholds
// are scanned in order and the first best split wins, so training is fully
// deterministic.
package tree

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Options controls the growth of the tree.
type Options struct {
	// MaxDepth limits the depth of the tree, 0 means unlimited.
	MaxDepth int
	// MinSamplesSplit is the minimum number of samples to split a node, 2 when zero.
	MinSamplesSplit int
}

// node is either a leaf (left == nil) or a split on x[feature] <= threshold.
type node struct {
	feature     int
	threshold   float64
	left, right *node
	counts      []int // samples per class
	samples     int
}

func (n *node) isLeaf() bool { return n.left == nil }

// Classifier is a trained decision tree.
type Classifier struct {
	root        *node
	nFeatures   int
	nClasses    int
	importances []float64
}

// Fit trains a classifier on the samples X and their classes y (0, 1, ...).
func Fit(X [][]float64, y []int, opts Options) (*Classifier, error) {
	if len(X) == 0 {
		return nil, errors.New("no samples to train on")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%d samples for %d labels", len(X), len(y))
	}
	nFeatures := len(X[0])
	if nFeatures == 0 {
		return nil, errors.New("samples have no features")
	}
	nClasses := 2
	for i := range X {
		if len(X[i]) != nFeatures {
			return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(X[i]), nFeatures)
		}
		if y[i] < 0 {
			return nil, fmt.Errorf("sample %d has a negative class %d", i, y[i])
		}
		nClasses = max(nClasses, y[i]+1)
	}
	if opts.MinSamplesSplit < 2 {
		opts.MinSamplesSplit = 2
	}

	b := builder{X: X, y: y, opts: opts, nClasses: nClasses, importances: make([]float64, nFeatures)}
	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	root := b.build(indices, 0)

	var total float64
	for _, v := range b.importances {
		total += v
	}
	if total > 0 {
		for i := range b.importances {
			b.importances[i] /= total
		}
	}
	return &Classifier{root: root, nFeatures: nFeatures, nClasses: nClasses, importances: b.importances}, nil
}

type builder struct {
	X           [][]float64
	y           []int
	opts        Options
	nClasses    int
	importances []float64
}

func (b *builder) count(indices []int) []int {
	counts := make([]int, b.nClasses)
	for _, i := range indices {
		counts[b.y[i]]++
	}
	return counts
}

func (b *builder) build(indices []int, depth int) *node {
	counts := b.count(indices)
	n := &node{counts: counts, samples: len(indices)}
	if gini(counts, len(indices)) == 0 ||
		len(indices) < b.opts.MinSamplesSplit ||
		(b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth) {
		return n
	}

	feature, threshold, gain, ok := b.bestSplit(indices, counts)
	if !ok {
		return n
	}
	var left, right []int
	for _, i := range indices {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	b.importances[feature] += max(gain, 0)
	n.feature, n.threshold = feature, threshold
	n.left = b.build(left, depth+1)
	n.right = b.build(right, depth+1)
	return n
}

// bestSplit returns the split with the largest weighted impurity decrease.
func (b *builder) bestSplit(indices []int, counts []int) (feature int, threshold, gain float64, ok bool) {
	total := len(indices)
	parent := float64(total) * gini(counts, total)
	best := math.Inf(-1)
	sorted := slices.Clone(indices)
	leftCounts := make([]int, b.nClasses)
	rightCounts := make([]int, b.nClasses)

	for f := 0; f < len(b.X[indices[0]]); f++ {
		slices.SortStableFunc(sorted, func(i, j int) int {
			switch {
			case b.X[i][f] < b.X[j][f]:
				return -1
			case b.X[i][f] > b.X[j][f]:
				return 1
			}
			return 0
		})
		clear(leftCounts)
		copy(rightCounts, counts)
		for k := 0; k < total-1; k++ {
			c := b.y[sorted[k]]
			leftCounts[c]++
			rightCounts[c]--
			lo, hi := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := k+1, total-k-1
			g := parent - float64(nl)*gini(leftCounts, nl) - float64(nr)*gini(rightCounts, nr)
			if g > best {
				best, feature, threshold, ok = g, f, lo+(hi-lo)/2, true
			}
		}
	}
	return feature, threshold, best, ok
}

// gini impurity of a node holding counts samples per class.
func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}

// leaf returns the leaf x falls in.
func (c *Classifier) leaf(x []float64) (*node, error) {
	if len(x) != c.nFeatures {
		return nil, fmt.Errorf("sample has %d features, want %d", len(x), c.nFeatures)
	}
	n := c.root
	for !n.isLeaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n, nil
}

// PredictProba returns the probability of each class for x: the class
// frequencies of the training samples in its leaf.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	n, err := c.leaf(x)
	if err != nil {
		return nil, err
	}
	proba := make([]float64, c.nClasses)
	for i, count := range n.counts {
		proba[i] = float64(count) / float64(n.samples)
	}
	return proba, nil
}

// Predict returns the most probable class for x, the lowest one on ties.
func (c *Classifier) Predict(x []float64) (int, error) {
	n, err := c.leaf(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for i, count := range n.counts {
		if count > n.counts[best] {
			best = i
		}
	}
	return best, nil
}

// FeatureImportances returns the normalized total impurity decrease brought
// by each feature. They sum to 1, or are all 0 for a single leaf tree.
func (c *Classifier) FeatureImportances() []float64 {
	return slices.Clone(c.importances)
}

// Depth returns the depth of the tree, 0 for a single leaf.
func (c *Classifier) Depth() int { return depth(c.root) }

func depth(n *node) int {
	if n.isLeaf() {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}

// Leaves returns the number of leaves of the tree.
func (c *Classifier) Leaves() int { return leaves(c.root) }

func leaves(n *node) int {
	if n.isLeaf() {
		return 1
	}
	return leaves(n.left) + leaves(n.right)
}

// Export renders the tree as indented text rules:
//
//	|--- qty_out <= 12.50
//	|   |--- class: High
//	|--- qty_out >  12.50
//	|   |--- class: Low
//
// Missing feature or class names are replaced by feature_i and i.
func (c *Classifier) Export(featureNames, classNames []string) string {
	var b strings.Builder
	c.export(&b, c.root, 0, featureNames, classNames)
	return b.String()
}

func (c *Classifier) export(b *strings.Builder, n *node, level int, featureNames, classNames []string) {
	indent := strings.Repeat("|   ", level)
	if n.isLeaf() {
		class := 0
		for i, count := range n.counts {
			if count > n.counts[class] {
				class = i
			}
		}
		fmt.Fprintf(b, "%s|--- class: %s\n", indent, name(classNames, class, ""))
		return
	}
	feature := name(featureNames, n.feature, "feature_")
	fmt.Fprintf(b, "%s|--- %s <= %.2f\n", indent, feature, n.threshold)
	c.export(b, n.left, level+1, featureNames, classNames)
	fmt.Fprintf(b, "%s|--- %s >  %.2f\n", indent, feature, n.threshold)
	c.export(b, n.right, level+1, featureNames, classNames)
}

func name(names []string, i int, prefix string) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%s%d", prefix, i)
}
