package model

import internalmodel "github.com/goliatone/go-dctmd/internal/model"

// Kind re-exports the internal node kind enumeration.
type Kind = internalmodel.Kind

const (
	KindGroup         = internalmodel.KindGroup
	KindYesNo         = internalmodel.KindYesNo
	KindEnum          = internalmodel.KindEnum
	KindMeasurement   = internalmodel.KindMeasurement
	KindCheckboxGroup = internalmodel.KindCheckboxGroup
	KindFlag          = internalmodel.KindFlag
	KindText          = internalmodel.KindText
)

// Axis re-exports the templating axis enumeration.
type Axis = internalmodel.Axis

const (
	AxisNone     = internalmodel.AxisNone
	AxisSide     = internalmodel.AxisSide
	AxisRegion   = internalmodel.AxisRegion
	AxisSite     = internalmodel.AxisSite
	AxisPainType = internalmodel.AxisPainType
)

type Operator = internalmodel.Operator

const (
	OpEquals    = internalmodel.OpEquals
	OpNotEquals = internalmodel.OpNotEquals
)

const (
	AnswerYes = internalmodel.AnswerYes
	AnswerNo  = internalmodel.AnswerNo
)

type Condition = internalmodel.Condition
type Child = internalmodel.Child
type Node = internalmodel.Node
type Section = internalmodel.Section
type LeafOption = internalmodel.LeafOption
