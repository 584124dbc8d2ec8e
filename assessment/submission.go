package assessment

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidSubmission = errors.New("invalid submission")

// Submission holds one answered form. Field bounds mirror the form widgets.
type Submission struct {
	Sex         Sex         `json:"sex" validate:"enum"`
	AgeCategory AgeCategory `json:"age_category" validate:"enum"`
	BMI         float64     `json:"bmi" validate:"gte=10,lte=60"`
	Race        Race        `json:"race" validate:"enum"`
	GenHealth   GenHealth   `json:"gen_health" validate:"enum"`
	SleepTime   int         `json:"sleep_time" validate:"gte=0,lte=24"`

	Diabetic      Diabetic `json:"diabetic" validate:"enum"`
	Stroke        bool     `json:"stroke"`
	Asthma        bool     `json:"asthma"`
	KidneyDisease bool     `json:"kidney_disease"`
	SkinCancer    bool     `json:"skin_cancer"`
	DiffWalking   bool     `json:"diff_walking"`

	Smoking            bool `json:"smoking"`
	AlcoholDrinking    bool `json:"alcohol_drinking"`
	PhysicalActivity   bool `json:"physical_activity"`
	PhysicalHealthDays int  `json:"physical_health_days" validate:"gte=0,lte=30"`
	MentalHealthDays   int  `json:"mental_health_days" validate:"gte=0,lte=30"`
}

// DefaultSubmission returns the form's initial state.
func DefaultSubmission() Submission {
	return Submission{
		Sex:                Male,
		AgeCategory:        Age18To24,
		BMI:                25.0,
		Race:               RaceWhite,
		GenHealth:          GenHealthExcellent,
		SleepTime:          7,
		Diabetic:           DiabeticNo,
		PhysicalHealthDays: 5,
		MentalHealthDays:   5,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(interface{ Valid() bool })
		return ok && e.Valid()
	})
	return v
}

// Validate checks every bound and enumeration. The returned error wraps
// ErrInvalidSubmission and names each offending field.
func (s Submission) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(problems, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "enum":
		return fmt.Sprintf("%s has no encoding for value %v", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
