package tech

import (
	"fmt"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/symtab"
)

type SiteClass uint8

const (
	SiteCore SiteClass = iota
	SitePad
)

func (s SiteClass) String() string {
	if s == SitePad {
		return "PAD"
	}
	return "CORE"
}

// Symmetry lists the transforms under which a site is unchanged.
type Symmetry struct {
	X, Y, R90 bool
}

type Site struct {
	Name     symtab.Index
	Class    SiteClass
	Width    int32
	Height   int32
	Symmetry Symmetry
}

func (t *Tech) AddSite(c *cell.Cell, name string, class SiteClass, width, height int32) (handle.Ref[Site], *Site, error) {
	if name == "" {
		return handle.Ref[Site]{}, nil, fmt.Errorf("%w: site", ErrEmptyName)
	}
	if _, _, err := cell.FindByName[Site](c, name); err == nil {
		return handle.Ref[Site]{}, nil, fmt.Errorf("%w: site %q", ErrDuplicateName, name)
	}
	sites, err := openList(c, &t.sites)
	if err != nil {
		return handle.Ref[Site]{}, nil, err
	}
	r, s := cell.Create[Site](c)
	s.Name = c.NameRecord(r.Handle(), name)
	s.Class = class
	s.Width = width
	s.Height = height
	sites.PushBack(r)
	return r, s, nil
}

func (t *Tech) Site(c *cell.Cell, name string) (handle.Ref[Site], *Site, error) {
	return cell.FindByName[Site](c, name)
}
