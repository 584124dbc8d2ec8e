package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeCategoryEncodingPreservesOrder(t *testing.T) {
	labels := []string{
		"18-24", "25-29", "30-34", "35-39", "40-44", "45-49", "50-54",
		"55-59", "60-64", "65-69", "70-74", "75-79", "80 or older",
	}
	require.Equal(t, labels, Options()["age_category"])

	for want, label := range labels {
		age, err := ParseAgeCategory(label)
		require.NoError(t, err)
		assert.Equal(t, float64(want), ageTable.code(age), label)
		assert.Equal(t, label, age.String())
	}
}

func TestCategoricalEncodingsAreBijective(t *testing.T) {
	tests := []struct {
		field string
		size  int
		parse func(string) (int, error)
	}{
		{"race", 6, func(s string) (int, error) { v, err := ParseRace(s); return int(v), err }},
		{"diabetic", 4, func(s string) (int, error) { v, err := ParseDiabetic(s); return int(v), err }},
		{"gen_health", 5, func(s string) (int, error) { v, err := ParseGenHealth(s); return int(v), err }},
		{"sex", 2, func(s string) (int, error) { v, err := ParseSex(s); return int(v), err }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			labels := Options()[tt.field]
			require.Len(t, labels, tt.size)

			seen := make(map[int]string)
			for _, label := range labels {
				code, err := tt.parse(label)
				require.NoError(t, err)
				require.GreaterOrEqual(t, code, 0)
				require.Less(t, code, tt.size)
				prev, dup := seen[code]
				require.Falsef(t, dup, "%q and %q share code %d", prev, label, code)
				seen[code] = label
			}
			assert.Len(t, seen, tt.size)
		})
	}
}

func TestDocumentedCodes(t *testing.T) {
	race, _ := ParseRace("American Indian/Alaskan Native")
	assert.Equal(t, RaceAmericanIndianAlaskanNative, race)
	assert.Equal(t, 3, int(race))

	diabetic, _ := ParseDiabetic("Yes (during pregnancy)")
	assert.Equal(t, 2, int(diabetic))

	health, _ := ParseGenHealth("Very good")
	assert.Equal(t, 3, int(health))
	poor, _ := ParseGenHealth("Poor")
	assert.Equal(t, 0, int(poor))

	male, _ := ParseSex("Male")
	assert.Equal(t, 1, int(male))
}

func TestParseIsCaseInsensitive(t *testing.T) {
	v, err := ParseGenHealth("  VERY GOOD ")
	require.NoError(t, err)
	assert.Equal(t, GenHealthVeryGood, v)

	age, err := ParseAgeCategory("80 OR OLDER")
	require.NoError(t, err)
	assert.Equal(t, Age80OrOlder, age)
}

func TestParseRejectsUnknownLabel(t *testing.T) {
	_, err := ParseRace("Martian")
	assert.ErrorIs(t, err, ErrInvalidSubmission)

	_, err = ParseAgeCategory("17")
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestFormDisplayOrder(t *testing.T) {
	assert.Equal(t, []string{"Male", "Female"}, Options()["sex"])
	assert.Equal(t, []string{"Excellent", "Very good", "Good", "Fair", "Poor"}, Options()["gen_health"])
}
