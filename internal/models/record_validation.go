package models

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gookit/validate"
)

const probabilityTolerance = 1e-6

type recordHeader struct {
	Type string `validate:"required|in:pregnancy_risk,fetal_classification"`
	ID   string `validate:"required|maxLen:128"`
}

type riskHeader struct {
	Prediction string `validate:"required|in:High,Low"`
}

// Validate checks the record against its variant schema. owner is the user
// the record is being written for. The record must already carry an id and
// a timestamp.
func (r *Record) Validate(owner string) error {
	if r == nil {
		return NewValidationError("", "record is empty")
	}
	if err := structErr(&recordHeader{Type: string(r.Type), ID: r.ID}); err != nil {
		return err
	}
	if r.Timestamp.IsZero() {
		return NewValidationError("timestamp", "is required")
	}
	if r.UserID != owner {
		return NewValidationError("user_id", "%q does not match owner %q", r.UserID, owner)
	}
	if !isProbability(r.Confidence) {
		return NewValidationError("confidence", "%v is outside [0,1]", r.Confidence)
	}

	switch r.Type {
	case TypePregnancyRisk:
		if r.PregnancyRisk == nil || r.FetalClassification != nil {
			return NewValidationError("type", "pregnancy_risk record must carry only risk fields")
		}
		return r.PregnancyRisk.validate()
	case TypeFetalClassification:
		if r.FetalClassification == nil || r.PregnancyRisk != nil {
			return NewValidationError("type", "fetal_classification record must carry only image fields")
		}
		return r.FetalClassification.validate(owner)
	}
	return NewValidationError("type", "unknown record type %q", r.Type)
}

func (p *PregnancyRisk) validate() error {
	if err := structErr(&riskHeader{Prediction: p.Prediction}); err != nil {
		return err
	}

	known := make(map[string]struct{}, len(MeasurementFields)+len(IndicatorFields))
	for _, f := range MeasurementFields {
		known[f] = struct{}{}
		v, ok := p.InputData[f]
		if !ok {
			return NewValidationError("input_data."+f, "is required")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return NewValidationError("input_data."+f, "%v is not a valid measurement", v)
		}
	}
	for _, f := range IndicatorFields {
		known[f] = struct{}{}
		v, ok := p.InputData[f]
		if !ok {
			return NewValidationError("input_data."+f, "is required")
		}
		if v != 0 && v != 1 {
			return NewValidationError("input_data."+f, "indicator must be 0 or 1, got %v", v)
		}
	}
	for f := range p.InputData {
		if _, ok := known[f]; !ok {
			return NewValidationError("input_data."+f, "unknown field")
		}
	}

	high, low := p.Probabilities.HighRisk, p.Probabilities.LowRisk
	if !isProbability(high) || !isProbability(low) {
		return NewValidationError("probabilities", "values must be within [0,1]")
	}
	if math.Abs(high+low-1) > probabilityTolerance {
		return NewValidationError("probabilities", "high_risk + low_risk = %v, want 1", high+low)
	}
	return nil
}

func (f *FetalClassification) validate(owner string) error {
	if err := ValidateName(f.ImageFilename); err != nil {
		return NewValidationError("image_filename", "%s", err)
	}
	if f.ImagePath != ImagePathFor(owner, f.ImageFilename) {
		return NewValidationError("image_path", "must be %q", ImagePathFor(owner, f.ImageFilename))
	}
	if !IsFetalPlaneLabel(f.PredictedLabel) {
		return NewValidationError("predicted_label", "unknown class %q", f.PredictedLabel)
	}
	if len(f.TopPredictions) == 0 {
		return NewValidationError("top_predictions", "is required")
	}
	if f.TopPredictions[0].Class != f.PredictedLabel {
		return NewValidationError("top_predictions", "first class %q differs from predicted_label", f.TopPredictions[0].Class)
	}
	for i, p := range f.TopPredictions {
		if !IsFetalPlaneLabel(p.Class) {
			return NewValidationError("top_predictions", "unknown class %q", p.Class)
		}
		if !isProbability(p.Probability) {
			return NewValidationError("top_predictions", "probability %v of %q is outside [0,1]", p.Probability, p.Class)
		}
		if i > 0 && p.Probability > f.TopPredictions[i-1].Probability {
			return NewValidationError("top_predictions", "not sorted by descending probability")
		}
	}
	return nil
}

// ValidateName checks that s is usable as a single path segment: a user id
// or a stored file name.
func ValidateName(s string) error {
	switch {
	case s == "":
		return errors.New("name is empty")
	case len(s) > 128:
		return errors.New("name is too long")
	case strings.HasPrefix(s, "."):
		return fmt.Errorf("name %q starts with a dot", s)
	case strings.Contains(s, ".."):
		return fmt.Errorf("name %q contains ..", s)
	case strings.ContainsAny(s, "/\\\x00"):
		return fmt.Errorf("name %q contains a path separator", s)
	}
	return nil
}

func isProbability(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func structErr(s interface{}) error {
	v := validate.Struct(s)
	if v.Validate() {
		return nil
	}
	return NewValidationError("", "%s", v.Errors.One())
}

// ValidateUserID rejects ids that could escape the user's storage area.
func ValidateUserID(userID string) error {
	if err := ValidateName(userID); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUserId, err)
	}
	return nil
}

// ValidateFilename rejects stored file names that could escape the user's storage area.
func ValidateFilename(filename string) error {
	if err := ValidateName(filename); err != nil {
		return NewValidationError("filename", "%s", err)
	}
	return nil
}
