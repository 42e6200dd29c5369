package examination

import "github.com/goliatone/go-dctmd/pkg/persistence"

// CurrentModelVersion is the version of the section models in this package.
// It must stay one past the number of migrations.
const CurrentModelVersion = 2

// Migrations returns the ordered migrations; entry i upgrades version i+1.
func Migrations() []persistence.Migration {
	return []persistence.Migration{
		renameMovementValue,
	}
}

var movementGroups = map[string][]string{
	SectionE4: {MovementPainFree, MovementMaxUnassisted, MovementMaxAssisted},
	SectionE5: {MovementLateralRight, MovementLateralLeft, MovementProtrusive},
}

// renameMovementValue moves the version 1 "value" key of every movement to
// "measurement". The input is left untouched.
func renameMovementValue(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = value
	}
	for section, movements := range movementGroups {
		src, ok := data[section].(map[string]any)
		if !ok {
			continue
		}
		dst := make(map[string]any, len(src))
		for key, value := range src {
			dst[key] = value
		}
		for _, movement := range movements {
			group, ok := src[movement].(map[string]any)
			if !ok {
				continue
			}
			value, ok := group["value"]
			if !ok {
				continue
			}
			next := make(map[string]any, len(group))
			for key, v := range group {
				if key != "value" {
					next[key] = v
				}
			}
			if _, exists := next["measurement"]; !exists {
				next["measurement"] = value
			}
			dst[movement] = next
		}
		out[section] = dst
	}
	return out
}
