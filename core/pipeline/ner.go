package pipeline

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/meetgraph/helper"
)

// NERModel is the token classification model used to detect people.
const NERModel = "KnightsAnalytics/distilbert-NER"

// NERPersons creates a person matcher backed by a NER model.
// Only PER entities are returned, deduplicated in order of appearance.
func NERPersons() (PersonMatcher, error) {
	modelPath, err := helper.PrepareModel(NERModel, "model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(text string) ([]string, error) {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}

		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}
		if len(result.Entities) == 0 {
			return nil, nil
		}

		names := []string{}
		for _, entity := range result.Entities[0] {
			if normalizeEntityType(entity.Entity) != "PER" {
				continue
			}
			names = appendUnique(names, strings.TrimSpace(entity.Word))
		}
		return names, nil
	}, nil
}

// normalizeEntityType removes B- and I- prefixes from NER labels
func normalizeEntityType(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}

func appendUnique(values []string, value string) []string {
	if value == "" {
		return values
	}
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

// NERPolicy is the general policy with people detected by the NER model.
func NERPolicy() (ExtractionPolicy, error) {
	people, err := NERPersons()
	if err != nil {
		return ExtractionPolicy{}, err
	}

	policy := GeneralPolicy()
	policy.Name = "ner"
	policy.People = people
	return policy, nil
}
