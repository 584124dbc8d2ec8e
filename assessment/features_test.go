package assessment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleSubmission() Submission {
	return Submission{
		Sex:                Male,
		AgeCategory:        Age40To44,
		BMI:                25.0,
		Race:               RaceWhite,
		GenHealth:          GenHealthGood,
		SleepTime:          7,
		Diabetic:           DiabeticNo,
		PhysicalActivity:   true,
		PhysicalHealthDays: 5,
		MentalHealthDays:   5,
	}
}

func TestEncodeExample(t *testing.T) {
	want := FeatureVector{25.0, 0, 0, 0, 5, 5, 0, 1, 4, 0, 0, 1, 2, 7, 0, 0, 0}
	assert.Equal(t, want, Encode(exampleSubmission()))
}

func TestFeatureNamesOrder(t *testing.T) {
	names := FeatureNames()
	require.Len(t, names, FeatureCount)
	assert.Equal(t, "BMI", names[0])
	assert.Equal(t, "AgeCategory", names[8])
	assert.Equal(t, "GenHealth", names[12])
	assert.Equal(t, "SkinCancer", names[16])
}

func TestEncodeBinaryFields(t *testing.T) {
	fields := map[string]func(*Submission){
		"Smoking":          func(s *Submission) { s.Smoking = true },
		"AlcoholDrinking":  func(s *Submission) { s.AlcoholDrinking = true },
		"Stroke":           func(s *Submission) { s.Stroke = true },
		"DiffWalking":      func(s *Submission) { s.DiffWalking = true },
		"PhysicalActivity": func(s *Submission) { s.PhysicalActivity = true },
		"Asthma":           func(s *Submission) { s.Asthma = true },
		"KidneyDisease":    func(s *Submission) { s.KidneyDisease = true },
		"SkinCancer":       func(s *Submission) { s.SkinCancer = true },
		"Sex":              func(s *Submission) { s.Sex = Male },
	}
	index := make(map[string]int)
	for i, name := range FeatureNames() {
		index[name] = i
	}

	for name, set := range fields {
		t.Run(name, func(t *testing.T) {
			s := DefaultSubmission()
			s.Sex = Female
			off := Encode(s)
			assert.Equal(t, 0.0, off[index[name]])

			set(&s)
			on := Encode(s)
			assert.Equal(t, 1.0, on[index[name]])

			for i := range on {
				if i != index[name] {
					assert.Equalf(t, off[i], on[i], "column %d changed when setting %s", i, name)
				}
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	s := exampleSubmission()
	assert.Equal(t, Encode(s), Encode(s))
	assert.Len(t, Encode(DefaultSubmission()).Slice(), FeatureCount)
}

func TestEncodePanicsOnUnknownCode(t *testing.T) {
	s := DefaultSubmission()
	s.Race = Race(42)
	assert.Panics(t, func() { Encode(s) })
}

func TestSubmissionJSONUsesLabels(t *testing.T) {
	payload := []byte(`{
		"sex": "Male", "age_category": "40-44", "bmi": 25, "race": "White",
		"gen_health": "Good", "sleep_time": 7, "diabetic": "No",
		"physical_activity": true, "physical_health_days": 5, "mental_health_days": 5
	}`)
	s := DefaultSubmission()
	require.NoError(t, json.Unmarshal(payload, &s))
	assert.Equal(t, exampleSubmission(), s)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"age_category":"40-44"`)
}

func TestSubmissionJSONRejectsUnknownLabel(t *testing.T) {
	s := DefaultSubmission()
	err := json.Unmarshal([]byte(`{"diabetic": "Sometimes"}`), &s)
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}
