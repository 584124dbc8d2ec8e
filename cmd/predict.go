package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"heartcheck/assessment"
)

// PredictOptions holds flags for the predict command.
type PredictOptions struct {
	*RootOptions
	JSON bool

	Sex         string
	AgeCategory string
	Race        string
	Diabetic    string
	GenHealth   string

	BMI                float64
	SleepTime          int
	PhysicalHealthDays int
	MentalHealthDays   int

	Stroke           bool
	Asthma           bool
	KidneyDisease    bool
	SkinCancer       bool
	DiffWalking      bool
	Smoking          bool
	AlcoholDrinking  bool
	PhysicalActivity bool
}

// NewPredictCommand creates the predict command.
func NewPredictCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PredictOptions{RootOptions: rootOpts}
	defaults := assessment.DefaultSubmission()

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Assess one patient from flags",
		Long: `Assess one patient from flags. Unset flags take the form defaults.

Example:
  heartcheck predict --sex Female --age-category "65-69" --bmi 31.2 --smoking
  heartcheck predict --diabetic "Yes" --stroke --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			submission, err := opts.submission()
			if err != nil {
				return err
			}

			a, err := newApp(opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			store, err := a.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			assessor, _, err := a.loadAssessor(cmd.Context(), store)
			if err != nil {
				return err
			}
			result, err := assessor.Assess(cmd.Context(), submission)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			_, err = fmt.Fprintln(out, result.Message())
			return err
		},
	}

	opts.bindFlags(cmd.Flags(), defaults)
	return cmd
}

func (o *PredictOptions) bindFlags(f *pflag.FlagSet, d assessment.Submission) {
	f.BoolVar(&o.JSON, "json", false, "print the full result as JSON")

	f.StringVar(&o.Sex, "sex", d.Sex.String(), "sex")
	f.StringVar(&o.AgeCategory, "age-category", d.AgeCategory.String(), "age category, e.g. \"40-44\"")
	f.StringVar(&o.Race, "race", d.Race.String(), "race")
	f.StringVar(&o.Diabetic, "diabetic", d.Diabetic.String(), "diabetic status")
	f.StringVar(&o.GenHealth, "gen-health", d.GenHealth.String(), "general health")

	f.Float64Var(&o.BMI, "bmi", d.BMI, "body mass index")
	f.IntVar(&o.SleepTime, "sleep-time", d.SleepTime, "hours of sleep per day")
	f.IntVar(&o.PhysicalHealthDays, "physical-health-days", d.PhysicalHealthDays, "days of poor physical health in the last 30")
	f.IntVar(&o.MentalHealthDays, "mental-health-days", d.MentalHealthDays, "days of poor mental health in the last 30")

	f.BoolVar(&o.Stroke, "stroke", d.Stroke, "ever had a stroke")
	f.BoolVar(&o.Asthma, "asthma", d.Asthma, "has asthma")
	f.BoolVar(&o.KidneyDisease, "kidney-disease", d.KidneyDisease, "has kidney disease")
	f.BoolVar(&o.SkinCancer, "skin-cancer", d.SkinCancer, "has had skin cancer")
	f.BoolVar(&o.DiffWalking, "diff-walking", d.DiffWalking, "has difficulty walking")
	f.BoolVar(&o.Smoking, "smoking", d.Smoking, "smoker")
	f.BoolVar(&o.AlcoholDrinking, "alcohol-drinking", d.AlcoholDrinking, "heavy drinker")
	f.BoolVar(&o.PhysicalActivity, "physical-activity", d.PhysicalActivity, "physically active")
}

// submission parses the categorical flags and validates the whole form.
func (o *PredictOptions) submission() (assessment.Submission, error) {
	s := assessment.Submission{
		BMI:                o.BMI,
		SleepTime:          o.SleepTime,
		PhysicalHealthDays: o.PhysicalHealthDays,
		MentalHealthDays:   o.MentalHealthDays,
		Stroke:             o.Stroke,
		Asthma:             o.Asthma,
		KidneyDisease:      o.KidneyDisease,
		SkinCancer:         o.SkinCancer,
		DiffWalking:        o.DiffWalking,
		Smoking:            o.Smoking,
		AlcoholDrinking:    o.AlcoholDrinking,
		PhysicalActivity:   o.PhysicalActivity,
	}
	var err error
	if s.Sex, err = assessment.ParseSex(o.Sex); err != nil {
		return s, fmt.Errorf("--sex: %w", err)
	}
	if s.AgeCategory, err = assessment.ParseAgeCategory(o.AgeCategory); err != nil {
		return s, fmt.Errorf("--age-category: %w", err)
	}
	if s.Race, err = assessment.ParseRace(o.Race); err != nil {
		return s, fmt.Errorf("--race: %w", err)
	}
	if s.Diabetic, err = assessment.ParseDiabetic(o.Diabetic); err != nil {
		return s, fmt.Errorf("--diabetic: %w", err)
	}
	if s.GenHealth, err = assessment.ParseGenHealth(o.GenHealth); err != nil {
		return s, fmt.Errorf("--gen-health: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
