package validation

import (
	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/instance"
)

// Screening names the gating questions of a screening questionnaire and the
// review field that becomes required once any gate is answered "yes".
type Screening struct {
	Gates      []fieldpath.Path `json:"gates"`
	ReviewedAt fieldpath.Path   `json:"reviewedAt"`
}

// ScreeningResult is the outcome of ValidateScreening.
type ScreeningResult struct {
	Result
	// Positive is true when any gate was answered "yes".
	Positive bool `json:"positive"`
}

// IsPositive reports whether any gate is answered "yes".
func (s Screening) IsPositive(get fieldpath.Getter) bool {
	for _, gate := range s.Gates {
		if isYes(get.At(gate)) {
			return true
		}
	}
	return false
}

// ValidateScreening runs the per-field rules over the questionnaire (gates
// are required, follow-ups only while enabled by their gate) and requires
// the review field when the screening is positive.
func ValidateScreening(instances []instance.Instance, get fieldpath.Getter, screening Screening) ScreeningResult {
	result := ScreeningResult{Result: ValidateInstances(instances, get)}
	result.Positive = screening.IsPositive(get)
	if result.Positive && !screening.ReviewedAt.IsZero() && isEmpty(get.At(screening.ReviewedAt)) {
		result.Errors = append(result.Errors, FieldError{
			Path:    screening.ReviewedAt.String(),
			Code:    CodeRequired,
			Message: "positive screening must be reviewed",
		})
	}
	result.Valid = len(result.Errors) == 0
	return result
}
