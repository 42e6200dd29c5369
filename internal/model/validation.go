package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
)

var (
	errSectionIDMissing = errors.New("model: section id is required")
	errRootMissing      = errors.New("model: section root is required")
	errRootNotGroup     = errors.New("model: section root must be a group")
)

// ValidateSection checks the structural invariants of a section model:
// unique child keys, well-formed leaves and enable conditions that point at
// an existing sibling.
func ValidateSection(section Section) error {
	if strings.TrimSpace(section.ID) == "" {
		return errSectionIDMissing
	}
	if section.Root == nil {
		return errRootMissing
	}
	if section.Root.Kind != KindGroup {
		return errRootNotGroup
	}
	if err := validateNode(section.ID, section.Root); err != nil {
		return fmt.Errorf("model: section %q: %w", section.ID, err)
	}
	return nil
}

func validateNode(path string, node *Node) error {
	if node == nil {
		return fmt.Errorf("%s: nil node", path)
	}
	switch node.Kind {
	case KindGroup:
		return validateGroup(path, node)
	case KindYesNo, KindEnum, KindCheckboxGroup:
		if len(node.Options) == 0 {
			return fmt.Errorf("%s: %s requires options", path, node.Kind)
		}
	case KindMeasurement:
		if node.Min != nil && node.Max != nil && *node.Min > *node.Max {
			return fmt.Errorf("%s: min %v exceeds max %v", path, *node.Min, *node.Max)
		}
	case KindFlag, KindText:
	default:
		return fmt.Errorf("%s: unknown node kind %q", path, node.Kind)
	}
	if len(node.Children) > 0 {
		return fmt.Errorf("%s: leaf %s cannot have children", path, node.Kind)
	}
	return nil
}

func validateGroup(path string, node *Node) error {
	seen := make(map[string]struct{}, len(node.Children))
	for _, child := range node.Children {
		key := strings.TrimSpace(child.Key)
		if key == "" {
			return fmt.Errorf("%s: empty child key", path)
		}
		if strings.Contains(key, ".") {
			return fmt.Errorf("%s: child key %q must not contain '.'", path, key)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s: duplicate child key %q", path, key)
		}
		if !validAxisValue(child.Axis, key) {
			return fmt.Errorf("%s: %q is not a valid %s", path, key, child.Axis)
		}
		seen[key] = struct{}{}
	}
	for _, child := range node.Children {
		childPath := path + "." + child.Key
		if err := validateNode(childPath, child.Node); err != nil {
			return err
		}
		if cond := child.Node.EnableWhen; cond != nil {
			if _, ok := seen[cond.Field]; !ok {
				return fmt.Errorf("%s: enableWhen references unknown sibling %q", childPath, cond.Field)
			}
			if cond.Op != OpEquals && cond.Op != OpNotEquals {
				return fmt.Errorf("%s: enableWhen has unknown operator %q", childPath, cond.Op)
			}
		}
	}
	return nil
}

func validAxisValue(axis Axis, key string) bool {
	switch axis {
	case AxisNone:
		return true
	case AxisSide:
		return anatomy.Side(key).Known()
	case AxisRegion:
		return anatomy.Region(key).Known()
	case AxisSite:
		return anatomy.Site(key).Known()
	case AxisPainType:
		return anatomy.PainType(key).Known()
	default:
		return false
	}
}
