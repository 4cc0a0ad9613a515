package model

import (
	"fmt"
	"math"

	"MarketPulse/internal/domain/service"
)

// Logistic is a regularized logistic-regression classifier trained with
// full-batch gradient descent on standardized features. Training is
// deterministic: weights start at zero and no shuffling takes place.
type Logistic struct {
	epochs       int
	learningRate float64
	l2           float64

	weights []float64
	bias    float64
	means   []float64
	stds    []float64
	trained bool
}

// NewLogistic creates a classifier with default hyperparameters.
func NewLogistic() *Logistic {
	return &Logistic{
		epochs:       300,
		learningRate: 0.1,
		l2:           1e-4,
	}
}

// Fit trains on a feature matrix and 0/1 labels of equal length.
func (l *Logistic) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 || len(features) != len(labels) {
		return fmt.Errorf("logistic fit: %d feature rows vs %d labels", len(features), len(labels))
	}
	dims := len(features[0])
	if dims == 0 {
		return fmt.Errorf("logistic fit: empty feature rows")
	}
	for i, row := range features {
		if len(row) != dims {
			return fmt.Errorf("logistic fit: row %d has %d features, want %d", i, len(row), dims)
		}
	}

	means, stds := standardization(features, dims)
	n := float64(len(features))

	weights := make([]float64, dims)
	bias := 0.0

	for epoch := 0; epoch < l.epochs; epoch++ {
		gradW := make([]float64, dims)
		gradB := 0.0

		for i, row := range features {
			z := bias
			for j := 0; j < dims; j++ {
				z += weights[j] * standardize(row[j], means[j], stds[j])
			}
			err := sigmoid(z) - float64(labels[i])
			for j := 0; j < dims; j++ {
				gradW[j] += err * standardize(row[j], means[j], stds[j])
			}
			gradB += err
		}

		for j := 0; j < dims; j++ {
			weights[j] -= l.learningRate * (gradW[j]/n + l.l2*weights[j])
		}
		bias -= l.learningRate * gradB / n
	}

	l.weights = weights
	l.bias = bias
	l.means = means
	l.stds = stds
	l.trained = true
	return nil
}

// Predict returns the predicted label and the probability of label 1.
func (l *Logistic) Predict(features []float64) (int, float64, error) {
	if !l.trained {
		return 0, 0, fmt.Errorf("logistic predict: classifier not fitted")
	}
	if len(features) != len(l.weights) {
		return 0, 0, fmt.Errorf("logistic predict: got %d features, want %d", len(features), len(l.weights))
	}

	z := l.bias
	for j, w := range l.weights {
		z += w * standardize(features[j], l.means[j], l.stds[j])
	}
	p := sigmoid(z)
	label := 0
	if p >= 0.5 {
		label = 1
	}
	return label, p, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func standardize(x, mean, std float64) float64 {
	return (x - mean) / std
}

func standardization(features [][]float64, dims int) (means, stds []float64) {
	n := float64(len(features))
	means = make([]float64, dims)
	stds = make([]float64, dims)

	for _, row := range features {
		for j := 0; j < dims; j++ {
			means[j] += row[j]
		}
	}
	for j := 0; j < dims; j++ {
		means[j] /= n
	}

	for _, row := range features {
		for j := 0; j < dims; j++ {
			d := row[j] - means[j]
			stds[j] += d * d
		}
	}
	for j := 0; j < dims; j++ {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

var _ service.Classifier = (*Logistic)(nil)
