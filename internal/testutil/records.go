package testutil

import (
	"medhistory/internal/models"
	"medhistory/internal/structures"
	"time"
)

// BaseTime is a fixed reference instant for tests.
var BaseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// PNG is the smallest byte sequence sniffed as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// JPEG is the smallest byte sequence sniffed as image/jpeg.
var JPEG = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")

// StorageConfig returns a config rooted at root with small limits.
func StorageConfig(root string) *structures.Config {
	return &structures.Config{
		Storage: structures.StorageConfig{
			Root:        root,
			HistoryFile: "medical_history.json",
			MaxRecords:  100,
			Retention:   7 * 24 * time.Hour,
			LockTimeout: 200 * time.Millisecond,
		},
		Archive: structures.ArchiveConfig{
			Enabled: true,
			TTL:     30 * 24 * time.Hour,
		},
		Scheduler: structures.SchedulerConfig{
			Enabled:  true,
			Interval: time.Hour,
			Workers:  2,
		},
	}
}

// RiskRecord returns a valid pregnancy risk record.
func RiskRecord(userID, id string, at time.Time) *models.Record {
	return &models.Record{
		ID:         id,
		Timestamp:  models.NewTimestamp(at),
		Type:       models.TypePregnancyRisk,
		UserID:     userID,
		Confidence: 0.8,
		PregnancyRisk: &models.PregnancyRisk{
			InputData: map[string]float64{
				models.FieldAge:                   29,
				models.FieldBMI:                   23.4,
				models.FieldSystolicBP:            120,
				models.FieldDiastolic:             80,
				models.FieldBloodSugar:            6.1,
				models.FieldBodyTemp:              98.2,
				models.FieldHeartRate:             76,
				models.FieldPreviousComplications: 0,
				models.FieldPreexistingDiabetes:   0,
				models.FieldGestationalDiabetes:   1,
				models.FieldMentalHealth:          0,
			},
			Prediction:    models.RiskLow,
			Probabilities: models.RiskProbabilities{HighRisk: 0.2, LowRisk: 0.8},
		},
	}
}

// FetalRecord returns a valid fetal classification record for filename.
func FetalRecord(userID, id, filename string, at time.Time) *models.Record {
	return &models.Record{
		ID:         id,
		Timestamp:  models.NewTimestamp(at),
		Type:       models.TypeFetalClassification,
		UserID:     userID,
		Confidence: 0.91,
		FetalClassification: &models.FetalClassification{
			ImageFilename:  filename,
			ImagePath:      models.ImagePathFor(userID, filename),
			PredictedLabel: "Fetal brain_Trans-thalamic",
			TopPredictions: []models.ClassProbability{
				{Class: "Fetal brain_Trans-thalamic", Probability: 0.91},
				{Class: "Other_Not A Brain", Probability: 0.09},
			},
		},
	}
}
