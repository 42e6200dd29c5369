package validation

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/model"
)

// Context selects the scope of the completion validators.
type Context struct {
	// IncludeAllRegions extends interview checks from the base regions to
	// every interview region.
	IncludeAllRegions bool                   `json:"includeAllRegions" yaml:"includeAllRegions"`
	PalpationMode     anatomy.PalpationMode  `json:"palpationMode,omitempty" yaml:"palpationMode,omitempty"`
	SiteDetailMode    anatomy.SiteDetailMode `json:"siteDetailMode,omitempty" yaml:"siteDetailMode,omitempty"`
}

func (c Context) palpationMode() anatomy.PalpationMode {
	if c.PalpationMode == "" {
		return anatomy.DefaultPalpationMode
	}
	return c.PalpationMode
}

func (c Context) grouped() bool {
	return c.SiteDetailMode == anatomy.SiteDetailGrouped
}

func (c Context) regions() map[anatomy.Region]bool {
	out := make(map[anatomy.Region]bool)
	for _, region := range anatomy.InterviewRegions(c.IncludeAllRegions) {
		out[region] = true
	}
	return out
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func isTrue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}

func isYes(value any) bool {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == model.AnswerYes
	}
	return false
}

func isNo(value any) bool {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == model.AnswerNo
	}
	return false
}

func toNumber(value any) (float64, bool) {
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
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
