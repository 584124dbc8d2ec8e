package assessment

// FeatureCount is the width of the vector the classifier was trained on.
const FeatureCount = 17

// FeatureVector is the encoded form of one submission, in training column order.
type FeatureVector [FeatureCount]float64

var featureNames = [FeatureCount]string{
	"BMI",
	"Smoking",
	"AlcoholDrinking",
	"Stroke",
	"PhysicalHealth",
	"MentalHealth",
	"DiffWalking",
	"Sex",
	"AgeCategory",
	"Race",
	"Diabetic",
	"PhysicalActivity",
	"GenHealth",
	"SleepTime",
	"Asthma",
	"KidneyDisease",
	"SkinCancer",
}

func FeatureNames() []string {
	return append([]string(nil), featureNames[:]...)
}

// Encode maps a submission onto the feature vector. It panics if an
// enumerated field holds a value outside its table; call Validate first
// on anything that did not come from a parser.
func Encode(s Submission) FeatureVector {
	return FeatureVector{
		s.BMI,
		encodeBinary(s.Smoking),
		encodeBinary(s.AlcoholDrinking),
		encodeBinary(s.Stroke),
		float64(s.PhysicalHealthDays),
		float64(s.MentalHealthDays),
		encodeBinary(s.DiffWalking),
		sexTable.code(s.Sex),
		ageTable.code(s.AgeCategory),
		raceTable.code(s.Race),
		diabeticTable.code(s.Diabetic),
		encodeBinary(s.PhysicalActivity),
		genHealthTable.code(s.GenHealth),
		float64(s.SleepTime),
		encodeBinary(s.Asthma),
		encodeBinary(s.KidneyDisease),
		encodeBinary(s.SkinCancer),
	}
}

func (v FeatureVector) Slice() []float64 {
	return append([]float64(nil), v[:]...)
}

func encodeBinary(option bool) float64 {
	if option {
		return 1
	}
	return 0
}
