package models

import "time"

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func riskRecord(userID, id string, at time.Time) *Record {
	return &Record{
		ID:         id,
		Timestamp:  NewTimestamp(at),
		Type:       TypePregnancyRisk,
		UserID:     userID,
		Confidence: 0.8,
		PregnancyRisk: &PregnancyRisk{
			InputData: map[string]float64{
				FieldAge:                   29,
				FieldBMI:                   23.4,
				FieldSystolicBP:            120,
				FieldDiastolic:             80,
				FieldBloodSugar:            6.1,
				FieldBodyTemp:              98.2,
				FieldHeartRate:             76,
				FieldPreviousComplications: 0,
				FieldPreexistingDiabetes:   0,
				FieldGestationalDiabetes:   1,
				FieldMentalHealth:          0,
			},
			Prediction:    RiskLow,
			Probabilities: RiskProbabilities{HighRisk: 0.2, LowRisk: 0.8},
		},
	}
}

func fetalRecord(userID, id, filename string, at time.Time) *Record {
	return &Record{
		ID:         id,
		Timestamp:  NewTimestamp(at),
		Type:       TypeFetalClassification,
		UserID:     userID,
		Confidence: 0.91,
		FetalClassification: &FetalClassification{
			ImageFilename:  filename,
			ImagePath:      ImagePathFor(userID, filename),
			PredictedLabel: "Fetal brain_Trans-thalamic",
			TopPredictions: []ClassProbability{
				{Class: "Fetal brain_Trans-thalamic", Probability: 0.91, Percentage: "91.00%"},
				{Class: "Fetal brain_Trans-ventricular", Probability: 0.06},
				{Class: "Other_Not A Brain", Probability: 0.03},
			},
		},
	}
}
