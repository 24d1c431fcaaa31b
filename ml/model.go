package ml

// Classifier is the minimal capability the scoring path depends on: given one
// feature vector, return the probability of the positive (occlusion) class.
type Classifier interface {
	PredictProba(features []float64) (float64, error)
}

// TrainableModel is implemented by models the offline trainer can fit and persist.
type TrainableModel interface {
	Classifier
	Train(features [][]float64, labels []int) error
	Save(path string) error
	Load(path string) error
}
