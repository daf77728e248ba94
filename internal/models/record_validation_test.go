package models

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Validate_ValidVariants(t *testing.T) {
	assert.NoError(t, riskRecord("alice", "r1", baseTime).Validate("alice"))
	assert.NoError(t, fetalRecord("alice", "f1", "scan.png", baseTime).Validate("alice"))
}

func TestRecord_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Record)
		field  string
	}{
		{"missing id", func(r *Record) { r.ID = "" }, ""},
		{"missing timestamp", func(r *Record) { r.Timestamp = Timestamp{} }, "timestamp"},
		{"foreign owner", func(r *Record) { r.UserID = "bob" }, "user_id"},
		{"confidence above one", func(r *Record) { r.Confidence = 1.5 }, "confidence"},
		{"unknown type", func(r *Record) { r.Type = "blood_test" }, ""},
		{"both variants", func(r *Record) {
			r.FetalClassification = fetalRecord("alice", "x", "a.png", baseTime).FetalClassification
		}, "type"},
		{"bad prediction", func(r *Record) { r.Prediction = "Medium" }, ""},
		{"missing input", func(r *Record) { delete(r.InputData, FieldBMI) }, "input_data.BMI"},
		{"negative measurement", func(r *Record) { r.InputData[FieldAge] = -1 }, "input_data.Age"},
		{"nan measurement", func(r *Record) { r.InputData[FieldHeartRate] = math.NaN() }, "input_data.Heart Rate"},
		{"indicator not binary", func(r *Record) { r.InputData[FieldMentalHealth] = 2 }, "input_data.Mental Health"},
		{"unknown input", func(r *Record) { r.InputData["Weight"] = 60 }, "input_data.Weight"},
		{"probabilities sum", func(r *Record) { r.Probabilities.LowRisk = 0.7 }, "probabilities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := riskRecord("alice", "r1", baseTime)
			tt.mutate(r)
			err := r.Validate("alice")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			if tt.field != "" {
				assert.Equal(t, tt.field, ve.Field)
			}
		})
	}
}

func TestRecord_Validate_FetalErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Record)
		field  string
	}{
		{"traversal filename", func(r *Record) { r.ImageFilename = "../x.png" }, "image_filename"},
		{"wrong image path", func(r *Record) { r.ImagePath = "uploads/bob/scan.png" }, "image_path"},
		{"unknown label", func(r *Record) { r.PredictedLabel = "Fetal heart" }, "predicted_label"},
		{"no predictions", func(r *Record) { r.TopPredictions = nil }, "top_predictions"},
		{"first differs", func(r *Record) { r.TopPredictions[0].Class = "Other_Not A Brain" }, "top_predictions"},
		{"unsorted", func(r *Record) { r.TopPredictions[2].Probability = 0.5 }, "top_predictions"},
		{"missing payload", func(r *Record) { r.FetalClassification = nil }, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fetalRecord("alice", "f1", "scan.png", baseTime)
			tt.mutate(r)
			err := r.Validate("alice")
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"alice", "user_42", "20260301_100000_scan.png", "a.b", strings.Repeat("x", 128)}
	for _, s := range valid {
		assert.NoError(t, ValidateName(s), s)
	}

	invalid := []string{"", ".", "..", ".hidden", "a..b", "a/b", `a\b`, "a\x00b", strings.Repeat("x", 129)}
	for _, s := range invalid {
		assert.Error(t, ValidateName(s), s)
	}
}

func TestValidateUserID_WrapsSentinel(t *testing.T) {
	err := ValidateUserID("../etc")
	assert.ErrorIs(t, err, ErrInvalidUserId)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestValidateFilename_IsValidationError(t *testing.T) {
	err := ValidateFilename("../../etc/passwd")
	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "filename", ve.Field)
}

func TestErrBusy_IsIOError(t *testing.T) {
	assert.ErrorIs(t, ErrBusy, ErrIO)
	assert.ErrorIs(t, IOError("commit", errors.New("disk full")), ErrIO)
	assert.NoError(t, IOError("commit", nil))
}
