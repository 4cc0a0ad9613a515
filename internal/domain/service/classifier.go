package service

// Classifier is a pluggable binary classifier. Any statistical or rule-based
// implementation can back the decision pipeline as long as Predict returns the
// probability of the positive ("price up") class.
type Classifier interface {
	// Fit trains on a feature matrix and 0/1 labels of equal length.
	Fit(features [][]float64, labels []int) error
	// Predict returns the predicted label and the probability of label 1.
	Predict(features []float64) (label int, probability float64, err error)
}
