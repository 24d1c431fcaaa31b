package ml

import (
	"path/filepath"
	"testing"
)

func trainingSet() ([][]float64, []int) {
	features := make([][]float64, 0)
	labels := make([]int, 0)
	for i := 0; i < 20; i++ {
		features = append(features, []float64{-2 + float64(i)*0.05, 1})
		labels = append(labels, 0)
		features = append(features, []float64{1 + float64(i)*0.05, 1})
		labels = append(labels, 1)
	}
	return features, labels
}

func TestBoostedTreesTrainAndPredict(t *testing.T) {
	features, labels := trainingSet()

	model := NewBoostedTrees(30, 2, 0.3)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	low, err := model.PredictProba([]float64{-1.5, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := model.PredictProba([]float64{1.5, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low <= 0 || low >= 1 || high <= 0 || high >= 1 {
		t.Fatalf("probabilities outside (0,1): %v %v", low, high)
	}
	if low >= 0.5 {
		t.Fatalf("expected low probability for negative region, got %v", low)
	}
	if high <= 0.5 {
		t.Fatalf("expected high probability for positive region, got %v", high)
	}
}

func TestBoostedTreesPredictBeforeTrain(t *testing.T) {
	model := &BoostedTrees{}
	if _, err := model.PredictProba([]float64{0, 0}); err == nil {
		t.Fatal("expected error for untrained model")
	}
}

func TestBoostedTreesSaveLoadRoundTrip(t *testing.T) {
	features, labels := trainingSet()
	model := NewBoostedTrees(10, 2, 0.3)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := &BoostedTrees{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	input := []float64{0.8, 1}
	want, err := model.PredictProba(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := loaded.PredictProba(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want != got {
		t.Fatalf("round trip changed prediction: %v != %v", want, got)
	}
}

func TestBoostedTreesLoadMissingFile(t *testing.T) {
	model := &BoostedTrees{}
	if err := model.Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing model file")
	}
}

func TestLoadModelUnsupportedType(t *testing.T) {
	if _, err := LoadModel("catboost_pickle", "whatever"); err == nil {
		t.Fatal("expected error for unsupported model type")
	}
}

func TestBoostedTreesRejectsNonBinaryLabels(t *testing.T) {
	model := NewBoostedTrees(5, 2, 0.3)
	err := model.Train([][]float64{{1}, {2}}, []int{0, 2})
	if err == nil {
		t.Fatal("expected error for non-binary labels")
	}
}
