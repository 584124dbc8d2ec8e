package ml

import (
	"fmt"
	"os"
)

// LoadModel reads the artifact at path and builds the classifier it describes.
// When modelType is non-empty it must match the artifact's declared type.
// When schema is non-empty the artifact must declare exactly those feature
// names in that order; artifacts without names must at least match its width.
func LoadModel(modelType, path string, schema []string) (Classifier, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	artifact, err := DecodeArtifact(file)
	if err != nil {
		return nil, err
	}
	if modelType != "" && artifact.ModelType != modelType {
		return nil, fmt.Errorf("%w: expected %s, artifact is %s", ErrInvalidModel, modelType, artifact.ModelType)
	}
	if err := checkSchema(artifact, schema); err != nil {
		return nil, err
	}
	return artifact.Build()
}

func checkSchema(artifact *Artifact, schema []string) error {
	if len(schema) == 0 {
		return nil
	}
	if artifact.Width() != len(schema) {
		return fmt.Errorf("%w: model expects %d features, encoder produces %d", ErrInvalidModel, artifact.Width(), len(schema))
	}
	if len(artifact.FeatureNames) == 0 {
		return nil
	}
	for i, name := range schema {
		if artifact.FeatureNames[i] != name {
			return fmt.Errorf("%w: feature %d is %q, encoder produces %q", ErrInvalidModel, i, artifact.FeatureNames[i], name)
		}
	}
	return nil
}
