package ml

import (
	"errors"
)

func LoadModel(modelType, path string) (Classifier, error) {
	switch modelType {
	case "boosted_trees":
		model := &BoostedTrees{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, errors.New("unsupported model type")
	}
}
