package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mingyueshfjksnkm/RAO-Calculator/ml"
	"github.com/mingyueshfjksnkm/RAO-Calculator/risk"
)

// Trains the RAO classifier from a labeled patient CSV and writes the three
// serving artifacts: the model JSON and the two standardization tables.
// The CSV needs the seven training columns plus a RAO outcome column (0/1);
// the diameter column is expected in centimeters, as in the training data.
func main() {
	dataPath := flag.String("data", "", "labeled patient CSV")
	labelColumn := flag.String("label", "RAO", "outcome column name")
	modelPath := flag.String("model_path", "./models/rao_model.json", "model output path")
	meansPath := flag.String("means_path", "./models/feature_means.csv", "means output path")
	stdsPath := flag.String("stds_path", "./models/feature_stds.csv", "stds output path")
	rounds := flag.Int("rounds", 100, "boosting rounds")
	maxDepth := flag.Int("max_depth", 3, "max tree depth")
	learningRate := flag.Float64("learning_rate", 0.1, "shrinkage per round")
	testRatio := flag.Float64("test_ratio", 0.2, "holdout ratio")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("data is required")
	}

	features, labels, err := loadTrainingData(*dataPath, *labelColumn)
	if err != nil {
		log.Fatalf("failed to load training data: %v", err)
	}

	means, stds, err := featureStats(features)
	if err != nil {
		log.Fatalf("failed to compute standardization stats: %v", err)
	}
	standardized := standardizeAll(features, means, stds)

	trainX, trainY, testX, testY := splitDataset(standardized, labels, *testRatio)

	model := ml.NewBoostedTrees(*rounds, *maxDepth, *learningRate)
	if err := model.Train(trainX, trainY); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	accuracy, precision, recall := evaluateModel(model, testX, testY)
	log.Printf("accuracy=%.2f precision=%.2f recall=%.2f", accuracy, precision, recall)

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := model.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	if err := writeStatsCSV(*meansPath, means); err != nil {
		log.Fatalf("failed to write means: %v", err)
	}
	if err := writeStatsCSV(*stdsPath, stds); err != nil {
		log.Fatalf("failed to write stds: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

// loadTrainingData reads rows in the fixed feature order risk.FeatureNames().
func loadTrainingData(path, labelColumn string) ([][]float64, []int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%s has no data rows", path)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[name] = i
	}
	names := risk.FeatureNames()
	indexes := make([]int, len(names))
	for i, name := range names {
		idx, ok := columns[name]
		if !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
		indexes[i] = idx
	}
	labelIdx, ok := columns[labelColumn]
	if !ok {
		return nil, nil, fmt.Errorf("missing label column %q", labelColumn)
	}

	features := make([][]float64, 0, len(rows)-1)
	labels := make([]int, 0, len(rows)-1)
	for r, row := range rows[1:] {
		vector := make([]float64, len(indexes))
		for i, idx := range indexes {
			value, err := strconv.ParseFloat(row[idx], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %q: %w", r+2, names[i], err)
			}
			vector[i] = value
		}
		label, err := strconv.Atoi(row[labelIdx])
		if err != nil || (label != 0 && label != 1) {
			return nil, nil, fmt.Errorf("row %d: label must be 0 or 1", r+2)
		}
		features = append(features, vector)
		labels = append(labels, label)
	}
	return features, labels, nil
}

// featureStats computes mean and std for the four numeric features, which
// occupy the first slots of the vector.
func featureStats(features [][]float64) (map[string]float64, map[string]float64, error) {
	numeric := risk.NumericFeatureNames()
	means := make(map[string]float64, len(numeric))
	stds := make(map[string]float64, len(numeric))

	for i, name := range numeric {
		sum := 0.0
		for _, row := range features {
			sum += row[i]
		}
		mean := sum / float64(len(features))

		variance := 0.0
		for _, row := range features {
			diff := row[i] - mean
			variance += diff * diff
		}
		std := math.Sqrt(variance / float64(len(features)))
		if std == 0 {
			return nil, nil, fmt.Errorf("feature %q is constant", name)
		}
		means[name] = mean
		stds[name] = std
	}
	return means, stds, nil
}

func standardizeAll(features [][]float64, means, stds map[string]float64) [][]float64 {
	numeric := risk.NumericFeatureNames()
	out := make([][]float64, len(features))
	for r, row := range features {
		vector := append([]float64(nil), row...)
		for i, name := range numeric {
			vector[i] = (vector[i] - means[name]) / stds[name]
		}
		out[r] = vector
	}
	return out
}

func writeStatsCSV(path string, table map[string]float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"feature", "value"}); err != nil {
		return err
	}
	for _, name := range risk.NumericFeatureNames() {
		if err := writer.Write([]string{name, strconv.FormatFloat(table[name], 'g', -1, 64)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func splitDataset(features [][]float64, labels []int, testRatio float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	split := int(float64(len(features)) * (1 - testRatio))
	for i := range features {
		if i < split {
			trainX = append(trainX, features[i])
			trainY = append(trainY, labels[i])
		} else {
			testX = append(testX, features[i])
			testY = append(testY, labels[i])
		}
	}
	return trainX, trainY, testX, testY
}

func evaluateModel(model *ml.BoostedTrees, testX [][]float64, testY []int) (accuracy, precision, recall float64) {
	if len(testX) == 0 {
		return 0, 0, 0
	}

	var correct int
	var truePositive int
	var predictedPositive int
	var actualPositive int

	for i, feature := range testX {
		prob, err := model.PredictProba(feature)
		if err != nil {
			continue
		}
		label := 0
		if prob >= 0.5 {
			label = 1
		}
		if label == testY[i] {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
		if testY[i] == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}

	accuracy = float64(correct) / float64(len(testX))
	if predictedPositive > 0 {
		precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		recall = float64(truePositive) / float64(actualPositive)
	}
	return accuracy, precision, recall
}
