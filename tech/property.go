package tech

import (
	"fmt"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/symtab"
)

// PropertyObject is the kind of record a property definition applies to.
type PropertyObject uint8

const (
	PropLibrary PropertyObject = iota
	PropLayer
	PropVia
	PropViaRule
	PropSite
)

func (o PropertyObject) String() string {
	switch o {
	case PropLayer:
		return "LAYER"
	case PropVia:
		return "VIA"
	case PropViaRule:
		return "VIARULE"
	case PropSite:
		return "SITE"
	}
	return "LIBRARY"
}

type PropertyType uint8

const (
	PropInteger PropertyType = iota
	PropReal
	PropString
)

func (p PropertyType) String() string {
	switch p {
	case PropReal:
		return "REAL"
	case PropString:
		return "STRING"
	}
	return "INTEGER"
}

type PropertyDefinition struct {
	Name   symtab.Index
	Object PropertyObject
	Type   PropertyType
}

// AddProperty defines a named property. Names are unique per object kind.
func (t *Tech) AddProperty(c *cell.Cell, name string, obj PropertyObject, typ PropertyType) (handle.Ref[PropertyDefinition], *PropertyDefinition, error) {
	if name == "" {
		return handle.Ref[PropertyDefinition]{}, nil, fmt.Errorf("%w: property", ErrEmptyName)
	}
	for _, h := range c.Symbols().References(c.Symbols().Lookup(name)) {
		p, err := cell.Addr(c, handle.Of[PropertyDefinition](h))
		if err == nil && p.Object == obj {
			return handle.Ref[PropertyDefinition]{}, nil, fmt.Errorf("%w: %v property %q", ErrDuplicateName, obj, name)
		}
	}
	props, err := openList(c, &t.props)
	if err != nil {
		return handle.Ref[PropertyDefinition]{}, nil, err
	}
	r, p := cell.Create[PropertyDefinition](c)
	p.Name = c.NameRecord(r.Handle(), name)
	p.Object = obj
	p.Type = typ
	props.PushBack(r)
	return r, p, nil
}
