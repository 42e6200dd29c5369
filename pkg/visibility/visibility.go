// Package visibility decides whether a question is enabled. A question with
// an enable condition is enabled only while its sibling leaf (same parent
// path, different key) compares as declared.
package visibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/model"
)

// Evaluator determines whether the question at path is enabled.
type Evaluator interface {
	Enabled(path fieldpath.Path, cond *model.Condition, get fieldpath.Getter) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(path fieldpath.Path, cond *model.Condition, get fieldpath.Getter) bool

// Enabled delegates to the underlying function.
func (fn EvaluatorFunc) Enabled(path fieldpath.Path, cond *model.Condition, get fieldpath.Getter) bool {
	return fn(path, cond, get)
}

// Default is the sibling-comparison evaluator.
var Default Evaluator = EvaluatorFunc(Enabled)

// Enabled evaluates cond against the sibling of path. A nil condition is
// always enabled.
func Enabled(path fieldpath.Path, cond *model.Condition, get fieldpath.Getter) bool {
	if cond == nil {
		return true
	}
	current := get.At(path.Sibling(cond.Field))
	equal := Equal(current, cond.Value)
	if cond.Op == model.OpNotEquals {
		return !equal
	}
	return equal
}

// Equal compares form values loosely: numbers by value, booleans against
// their string forms, and nil against nil or the empty string.
func Equal(left, right any) bool {
	if isEmpty(left) || isEmpty(right) {
		return isEmpty(left) && isEmpty(right)
	}
	if lf, ok := toFloat(left); ok {
		if rf, ok := toFloat(right); ok {
			return lf == rf
		}
	}
	if lb, ok := toBool(left); ok {
		if rb, ok := toBool(right); ok {
			return lb == rb
		}
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}
