package models

import (
	"time"

	json "github.com/goccy/go-json"
)

type RecordType string

const (
	TypePregnancyRisk        RecordType = "pregnancy_risk"
	TypeFetalClassification  RecordType = "fetal_classification"
	RiskHigh                            = "High"
	RiskLow                             = "Low"
	imagePathPrefix                     = "uploads/"
)

// Record is one persisted prediction event. Type selects the variant and
// exactly one of the embedded variant payloads is set; their fields are
// flattened into the record's JSON object.
type Record struct {
	ID         string     `json:"id"`
	Timestamp  Timestamp  `json:"timestamp"`
	Type       RecordType `json:"type"`
	UserID     string     `json:"user_id"`
	Confidence float64    `json:"confidence"`

	*PregnancyRisk
	*FetalClassification
}

type PregnancyRisk struct {
	InputData     map[string]float64 `json:"input_data"`
	Prediction    string             `json:"prediction"`
	Probabilities RiskProbabilities  `json:"probabilities"`
}

type RiskProbabilities struct {
	HighRisk float64 `json:"high_risk"`
	LowRisk  float64 `json:"low_risk"`
}

type FetalClassification struct {
	ImageFilename  string             `json:"image_filename"`
	ImagePath      string             `json:"image_path"`
	PredictedLabel string             `json:"predicted_label"`
	TopPredictions []ClassProbability `json:"top_predictions"`
}

type ClassProbability struct {
	Class       string  `json:"Class"`
	Probability float64 `json:"Probability"`
	Percentage  string  `json:"Percentage,omitempty"`
}

// IsImageBacked reports whether the record references an uploaded image file.
func (r *Record) IsImageBacked() bool {
	return r.FetalClassification != nil && r.ImageFilename != ""
}

// ImagePathFor is the path under which the frontend fetches a user's image.
func ImagePathFor(userID, filename string) string {
	return imagePathPrefix + userID + "/" + filename
}

// Timestamp is a UTC point in time serialized as RFC 3339. Values written
// without a zone offset are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func ParseTimestamp(s string) (Timestamp, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewTimestamp(t), nil
		}
		lastErr = err
	}
	return Timestamp{}, lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
