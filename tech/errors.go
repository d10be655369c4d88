package tech

import "errors"

var (
	ErrNoTech         = errors.New("the cell has no technology root")
	ErrRootExists     = errors.New("the cell already has a root record")
	ErrDuplicateName  = errors.New("a record of this type already has that name")
	ErrEmptyName      = errors.New("records of this type must be named")
	ErrRuleKind       = errors.New("the layer does not carry a rule of that kind")
	ErrSpacingKind    = errors.New("spacing kind not supported on this layer type")
	ErrNoSpacingTable = errors.New("the layer has no parallel run length spacing table")
	ErrTableShape     = errors.New("spacing table rows must have one value per parallel run length")
	ErrLayerNotInTech = errors.New("layer is not part of the technology")
)
