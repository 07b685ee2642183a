// README: Trained model + fitted encoder pair, loaded once and shared read-only by all predictions.
package prediction

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"nyctaxi/internal/modules/boost"
	"nyctaxi/internal/modules/features"
)

const (
	ModelFile   = "fare_model.json"
	EncoderFile = "encoder.json"
)

// Artifacts is immutable once constructed.
type Artifacts struct {
	Model    *boost.Model
	Encoder  *features.OneHotEncoder
	Version  string
	LoadedAt time.Time
}

// NewArtifacts checks that the model's feature order is exactly the set of
// columns the encoder and trip record produce.
func NewArtifacts(model *boost.Model, enc *features.OneHotEncoder) (*Artifacts, error) {
	if model == nil || enc == nil {
		return nil, fmt.Errorf("%w: model and encoder are both required", ErrArtifactLoad)
	}
	if err := features.CheckColumns(model.FeatureNames, enc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	version, err := fingerprint(model, enc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	return &Artifacts{Model: model, Encoder: enc, Version: version, LoadedAt: time.Now()}, nil
}

// LoadArtifacts reads fare_model.json and encoder.json from dir.
func LoadArtifacts(dir string) (*Artifacts, error) {
	model, err := boost.Load(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, errors.Join(ErrArtifactLoad, err)
	}
	enc, err := features.LoadOneHotEncoder(filepath.Join(dir, EncoderFile))
	if err != nil {
		return nil, errors.Join(ErrArtifactLoad, err)
	}
	return NewArtifacts(model, enc)
}

// SaveArtifacts writes both files into dir after the same consistency check
// that LoadArtifacts applies.
func SaveArtifacts(dir string, model *boost.Model, enc *features.OneHotEncoder) error {
	if _, err := NewArtifacts(model, enc); err != nil {
		return err
	}
	if err := model.Save(filepath.Join(dir, ModelFile)); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := enc.Save(filepath.Join(dir, EncoderFile)); err != nil {
		return fmt.Errorf("save encoder: %w", err)
	}
	return nil
}

func fingerprint(model *boost.Model, enc *features.OneHotEncoder) (string, error) {
	h := sha256.New()
	for _, v := range []any{model, enc} {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))[:12], nil
}
