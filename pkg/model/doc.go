// Package model exposes the declarative examination model: a tree of groups
// and typed leaf questions (yesNo, enum, measurement, checkboxGroup, flag,
// text) carrying defaults and per-field constraints (required, min/max,
// enableWhen). Groups may be tagged with a templating axis (side, region,
// site, painType) so the instance projection can attach clinical context to
// every leaf below them. Builders reside in internal/model and are
// re-exported here.
package model
