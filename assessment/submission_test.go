package assessment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSubmissionIsValid(t *testing.T) {
	require.NoError(t, DefaultSubmission().Validate())
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Submission)
		field  string
	}{
		{"bmi low", func(s *Submission) { s.BMI = 9.9 }, "bmi"},
		{"bmi high", func(s *Submission) { s.BMI = 60.1 }, "bmi"},
		{"bmi nan", func(s *Submission) { s.BMI = math.NaN() }, "bmi"},
		{"sleep high", func(s *Submission) { s.SleepTime = 25 }, "sleep_time"},
		{"sleep negative", func(s *Submission) { s.SleepTime = -1 }, "sleep_time"},
		{"physical days", func(s *Submission) { s.PhysicalHealthDays = 31 }, "physical_health_days"},
		{"mental days", func(s *Submission) { s.MentalHealthDays = -2 }, "mental_health_days"},
		{"age code", func(s *Submission) { s.AgeCategory = 13 }, "age_category"},
		{"gen health code", func(s *Submission) { s.GenHealth = -1 }, "gen_health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSubmission()
			tt.mutate(&s)
			err := s.Validate()
			require.ErrorIs(t, err, ErrInvalidSubmission)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateBoundaryValues(t *testing.T) {
	s := DefaultSubmission()
	s.BMI = 10
	s.SleepTime = 24
	s.PhysicalHealthDays = 30
	s.MentalHealthDays = 0
	assert.NoError(t, s.Validate())

	s.BMI = 60
	s.SleepTime = 0
	assert.NoError(t, s.Validate())
}
