package modflow

import (
	"path/filepath"
	"strings"
)

// Package is a MODFLOW input package that a Model can register and export.
type Package interface {
	Ftype() string    // name-file type tag, e.g. "CHD"
	FileName() string // file name relative to the model workspace
	Unit() int        // name-file unit number
	WriteFile() error
	Check() error
}

// pkgbase carries the bookkeeping shared by every package
type pkgbase struct {
	parent    *Model
	ftype     string
	extension string
	unit      int
	url       string // online guide page
}

func (p *pkgbase) Ftype() string     { return p.ftype }
func (p *pkgbase) Extension() string { return p.extension }
func (p *pkgbase) Unit() int         { return p.unit }

// Parent is the model the package was built for.
func (p *pkgbase) Parent() *Model { return p.parent }

// URL returns the MODFLOW-2005 online guide page for the package.
func (p *pkgbase) URL() string {
	return "http://water.usgs.gov/ogw/modflow/MODFLOW-2005-Guide/index.html?" + p.url
}

// FileName is <model name>.<extension>
func (p *pkgbase) FileName() string {
	return p.Parent().Name + "." + strings.TrimPrefix(p.extension, ".")
}

// FnPath is the full output path of the package file.
func (p *pkgbase) FnPath() string {
	return filepath.Join(p.Parent().Workspace, p.FileName())
}
