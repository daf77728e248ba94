package models

// Clinical input fields of a pregnancy risk assessment.
const (
	FieldAge                   = "Age"
	FieldBMI                   = "BMI"
	FieldSystolicBP            = "Systolic BP"
	FieldDiastolic             = "Diastolic"
	FieldBloodSugar            = "BS"
	FieldBodyTemp              = "Body Temp"
	FieldHeartRate             = "Heart Rate"
	FieldPreviousComplications = "Previous Complications"
	FieldPreexistingDiabetes   = "Preexisting Diabetes"
	FieldGestationalDiabetes   = "Gestational Diabetes"
	FieldMentalHealth          = "Mental Health"
)

var MeasurementFields = []string{
	FieldAge,
	FieldBMI,
	FieldSystolicBP,
	FieldDiastolic,
	FieldBloodSugar,
	FieldBodyTemp,
	FieldHeartRate,
}

// IndicatorFields only accept 0 or 1.
var IndicatorFields = []string{
	FieldPreviousComplications,
	FieldPreexistingDiabetes,
	FieldGestationalDiabetes,
	FieldMentalHealth,
}

// FetalPlaneLabels are the classifier output classes, "<plane>_<brain plane>".
var FetalPlaneLabels = []string{
	"Fetal abdomen_Not A Brain",
	"Fetal brain_Other",
	"Fetal brain_Trans-cerebellum",
	"Fetal brain_Trans-thalamic",
	"Fetal brain_Trans-ventricular",
	"Fetal femur_Not A Brain",
	"Fetal thorax_Not A Brain",
	"Maternal cervix_Not A Brain",
	"Other_Not A Brain",
}

var fetalPlaneSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(FetalPlaneLabels))
	for _, l := range FetalPlaneLabels {
		set[l] = struct{}{}
	}
	return set
}()

func IsFetalPlaneLabel(label string) bool {
	_, ok := fetalPlaneSet[label]
	return ok
}
