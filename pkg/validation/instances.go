package validation

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/instance"
	"github.com/goliatone/go-dctmd/pkg/visibility"
)

// Error codes attached to field errors.
const (
	CodeRequired = "required"
	CodeMin      = "min"
	CodeMax      = "max"
	CodeNumber   = "number"
)

// Measurement bounds applied when the model leaves them unset.
const (
	DefaultMin = 0
	DefaultMax = 100
)

// FieldError is a validation failure attached to one leaf path.
type FieldError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of per-field validation.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Paths lists the paths carrying errors, in report order.
func (r Result) Paths() []string {
	out := make([]string, 0, len(r.Errors))
	for _, fe := range r.Errors {
		out = append(out, fe.Path)
	}
	return out
}

// ValidateInstances runs the per-field rules over instances. Every failing
// leaf is reported; validation does not stop at the first error.
func ValidateInstances(instances []instance.Instance, get fieldpath.Getter) Result {
	return validateInstances(instances, get, visibility.Default)
}

func validateInstances(instances []instance.Instance, get fieldpath.Getter, eval visibility.Evaluator) Result {
	var errs []FieldError
	for _, inst := range instances {
		if !eval.Enabled(inst.Path, inst.EnableWhen, get) {
			continue
		}
		if inst.RenderType == instance.RenderMeasurement {
			errs = append(errs, checkMeasurement(inst, get)...)
			continue
		}
		if inst.Config.Required && isEmpty(get.At(inst.Path)) {
			errs = append(errs, requiredError(inst.Path))
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func checkMeasurement(inst instance.Instance, get fieldpath.Getter) []FieldError {
	if isTrue(get.At(inst.Path.Refused())) {
		return nil
	}
	value := get.At(inst.Path)
	if isEmpty(value) {
		if inst.Config.Required && !isTrue(get.At(inst.Path.Terminated())) {
			return []FieldError{requiredError(inst.Path)}
		}
		return nil
	}

	number, ok := toNumber(value)
	if !ok {
		return []FieldError{{Path: inst.Key(), Code: CodeNumber, Message: "must be a number"}}
	}
	lo, hi := float64(DefaultMin), float64(DefaultMax)
	if inst.Config.Min != nil {
		lo = *inst.Config.Min
	}
	if inst.Config.Max != nil {
		hi = *inst.Config.Max
	}
	switch {
	case number < lo:
		return []FieldError{{Path: inst.Key(), Code: CodeMin, Message: "must be at least " + formatNumber(lo)}}
	case number > hi:
		return []FieldError{{Path: inst.Key(), Code: CodeMax, Message: "must be at most " + formatNumber(hi)}}
	}
	return nil
}

func requiredError(path fieldpath.Path) FieldError {
	return FieldError{Path: path.String(), Code: CodeRequired, Message: "required"}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func missingError(path fieldpath.Path, question string) FieldError {
	return FieldError{Path: path.String(), Code: CodeRequired, Message: fmt.Sprintf("%s answer required", question)}
}
