package assessment

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// enumTable is a closed label table. The position of a label is its categorical code.
type enumTable[T ~int] struct {
	field   string
	labels  []string
	display []T
	index   map[string]T
}

func newEnumTable[T ~int](field string, labels []string, display []T) *enumTable[T] {
	index := make(map[string]T, len(labels))
	for code, label := range labels {
		index[foldLabel(label)] = T(code)
	}
	if display == nil {
		display = make([]T, len(labels))
		for code := range labels {
			display[code] = T(code)
		}
	}
	return &enumTable[T]{field: field, labels: labels, display: display, index: index}
}

func (t *enumTable[T]) parse(label string) (T, error) {
	v, ok := t.index[foldLabel(label)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidSubmission, t.field, label)
	}
	return v, nil
}

func (t *enumTable[T]) valid(v T) bool {
	return int(v) >= 0 && int(v) < len(t.labels)
}

func (t *enumTable[T]) label(v T) string {
	if !t.valid(v) {
		return fmt.Sprintf("%s(%d)", t.field, int(v))
	}
	return t.labels[v]
}

// code panics on a value outside the table: every value reaching the encoder
// came through parse or a declared constant.
func (t *enumTable[T]) code(v T) float64 {
	if !t.valid(v) {
		panic(fmt.Sprintf("assessment: %s code %d outside encoding table", t.field, int(v)))
	}
	return float64(v)
}

// options lists labels in the order the form presents them.
func (t *enumTable[T]) options() []string {
	out := make([]string, len(t.display))
	for i, v := range t.display {
		out[i] = t.labels[v]
	}
	return out
}

func foldLabel(label string) string {
	return cases.Fold().String(strings.TrimSpace(label))
}

type Sex int

const (
	Female Sex = iota
	Male
)

type AgeCategory int

const (
	Age18To24 AgeCategory = iota
	Age25To29
	Age30To34
	Age35To39
	Age40To44
	Age45To49
	Age50To54
	Age55To59
	Age60To64
	Age65To69
	Age70To74
	Age75To79
	Age80OrOlder
)

type Race int

const (
	RaceWhite Race = iota
	RaceBlack
	RaceAsian
	RaceAmericanIndianAlaskanNative
	RaceOther
	RaceHispanic
)

type Diabetic int

const (
	DiabeticNo Diabetic = iota
	DiabeticBorderline
	DiabeticDuringPregnancy
	DiabeticYes
)

type GenHealth int

const (
	GenHealthPoor GenHealth = iota
	GenHealthFair
	GenHealthGood
	GenHealthVeryGood
	GenHealthExcellent
)

var (
	sexTable = newEnumTable("sex", []string{"Female", "Male"}, []Sex{Male, Female})

	ageTable = newEnumTable[AgeCategory]("age category", []string{
		"18-24", "25-29", "30-34", "35-39",
		"40-44", "45-49", "50-54", "55-59",
		"60-64", "65-69", "70-74", "75-79", "80 or older",
	}, nil)

	raceTable = newEnumTable[Race]("race", []string{
		"White", "Black", "Asian", "American Indian/Alaskan Native", "Other", "Hispanic",
	}, nil)

	diabeticTable = newEnumTable[Diabetic]("diabetic status", []string{
		"No", "No, borderline diabetes", "Yes (during pregnancy)", "Yes",
	}, nil)

	genHealthTable = newEnumTable("general health", []string{
		"Poor", "Fair", "Good", "Very good", "Excellent",
	}, []GenHealth{GenHealthExcellent, GenHealthVeryGood, GenHealthGood, GenHealthFair, GenHealthPoor})
)

func ParseSex(label string) (Sex, error)                 { return sexTable.parse(label) }
func ParseAgeCategory(label string) (AgeCategory, error) { return ageTable.parse(label) }
func ParseRace(label string) (Race, error)               { return raceTable.parse(label) }
func ParseDiabetic(label string) (Diabetic, error)       { return diabeticTable.parse(label) }
func ParseGenHealth(label string) (GenHealth, error)     { return genHealthTable.parse(label) }

func (s Sex) String() string         { return sexTable.label(s) }
func (a AgeCategory) String() string { return ageTable.label(a) }
func (r Race) String() string        { return raceTable.label(r) }
func (d Diabetic) String() string    { return diabeticTable.label(d) }
func (g GenHealth) String() string   { return genHealthTable.label(g) }

func (s Sex) Valid() bool         { return sexTable.valid(s) }
func (a AgeCategory) Valid() bool { return ageTable.valid(a) }
func (r Race) Valid() bool        { return raceTable.valid(r) }
func (d Diabetic) Valid() bool    { return diabeticTable.valid(d) }
func (g GenHealth) Valid() bool   { return genHealthTable.valid(g) }

func (s Sex) MarshalText() ([]byte, error)         { return []byte(s.String()), nil }
func (a AgeCategory) MarshalText() ([]byte, error) { return []byte(a.String()), nil }
func (r Race) MarshalText() ([]byte, error)        { return []byte(r.String()), nil }
func (d Diabetic) MarshalText() ([]byte, error)    { return []byte(d.String()), nil }
func (g GenHealth) MarshalText() ([]byte, error)   { return []byte(g.String()), nil }

func (s *Sex) UnmarshalText(text []byte) (err error) {
	*s, err = ParseSex(string(text))
	return err
}

func (a *AgeCategory) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAgeCategory(string(text))
	return err
}

func (r *Race) UnmarshalText(text []byte) (err error) {
	*r, err = ParseRace(string(text))
	return err
}

func (d *Diabetic) UnmarshalText(text []byte) (err error) {
	*d, err = ParseDiabetic(string(text))
	return err
}

func (g *GenHealth) UnmarshalText(text []byte) (err error) {
	*g, err = ParseGenHealth(string(text))
	return err
}

// Options returns the selectable labels of every categorical input, in form order.
func Options() map[string][]string {
	return map[string][]string{
		"sex":          sexTable.options(),
		"age_category": ageTable.options(),
		"race":         raceTable.options(),
		"diabetic":     diabeticTable.options(),
		"gen_health":   genHealthTable.options(),
	}
}
