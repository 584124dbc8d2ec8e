package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/Masterminds/sprig"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"heartcheck/assessment"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData 页面渲染数据
type pageData struct {
	Submission assessment.Submission
	Options    map[string][]string
	Model      ModelInfo
	Result     *assessment.Result
	Error      string
}

func parseTemplates() (*template.Template, error) {
	page, err := template.New("index.html").Funcs(sprig.HtmlFuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return page, nil
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.newPage(assessment.DefaultSubmission()))
}

func (h *Handlers) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		data := h.newPage(assessment.DefaultSubmission())
		data.Error = "could not read form: " + err.Error()
		h.render(w, http.StatusBadRequest, data)
		return
	}

	submission, err := parseSubmission(r.PostForm)
	data := h.newPage(submission)
	if err != nil {
		data.Error = err.Error()
		h.render(w, http.StatusBadRequest, data)
		return
	}

	result, err := h.assessor.Assess(r.Context(), submission)
	if err != nil {
		h.logFailure(r, err)
		data.Error = err.Error()
		h.render(w, statusFor(err), data)
		return
	}
	data.Result = &result
	h.render(w, http.StatusOK, data)
}

func (h *Handlers) newPage(s assessment.Submission) pageData {
	return pageData{
		Submission: s,
		Options:    assessment.Options(),
		Model:      h.model,
	}
}

// render buffers the page so a template failure still yields a clean 500.
func (h *Handlers) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.page.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.logger.Error("render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// parseSubmission reads a posted form. Missing fields keep their defaults and
// checkboxes are true when present.
func parseSubmission(form url.Values) (assessment.Submission, error) {
	s := assessment.DefaultSubmission()
	var problems []string
	fail := func(field string, err error) {
		problems = append(problems, fmt.Sprintf("%s: %v", field, err))
	}

	enumField(form, "sex", assessment.ParseSex, &s.Sex, fail)
	enumField(form, "age_category", assessment.ParseAgeCategory, &s.AgeCategory, fail)
	enumField(form, "race", assessment.ParseRace, &s.Race, fail)
	enumField(form, "diabetic", assessment.ParseDiabetic, &s.Diabetic, fail)
	enumField(form, "gen_health", assessment.ParseGenHealth, &s.GenHealth, fail)

	if v, ok := formValue(form, "bmi"); ok {
		if bmi, err := cast.ToFloat64E(v); err != nil {
			fail("bmi", err)
		} else {
			s.BMI = bmi
		}
	}
	ints := []struct {
		field string
		dst   *int
	}{
		{"sleep_time", &s.SleepTime},
		{"physical_health_days", &s.PhysicalHealthDays},
		{"mental_health_days", &s.MentalHealthDays},
	}
	for _, in := range ints {
		v, ok := formValue(form, in.field)
		if !ok {
			continue
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			fail(in.field, err)
			continue
		}
		*in.dst = n
	}

	s.Stroke = form.Has("stroke")
	s.Asthma = form.Has("asthma")
	s.KidneyDisease = form.Has("kidney_disease")
	s.SkinCancer = form.Has("skin_cancer")
	s.DiffWalking = form.Has("diff_walking")
	s.Smoking = form.Has("smoking")
	s.AlcoholDrinking = form.Has("alcohol_drinking")
	s.PhysicalActivity = form.Has("physical_activity")

	if len(problems) > 0 {
		return s, fmt.Errorf("%w: %s", assessment.ErrInvalidSubmission, strings.Join(problems, "; "))
	}
	return s, nil
}

// enumField parses one select input; on failure the default stays in place.
func enumField[T any](form url.Values, field string, parse func(string) (T, error), dst *T, fail func(string, error)) {
	v, ok := formValue(form, field)
	if !ok {
		return
	}
	parsed, err := parse(v)
	if err != nil {
		fail(field, err)
		return
	}
	*dst = parsed
}

func formValue(form url.Values, field string) (string, bool) {
	v := strings.TrimSpace(form.Get(field))
	return v, v != ""
}
