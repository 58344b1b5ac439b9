// Package modflow builds MODFLOW-2005 input packages and writes them as the
// fixed-format text files read by the simulator.
package modflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maseology/mmio"
	"github.com/maseology/modflow/grid"
)

const (
	listUnit    = 2
	nameHeading = "# Name file for MODFLOW, generated by Flopy."
)

var (
	// ErrNoModel is returned when a package is built without a parent model.
	ErrNoModel = errors.New("package has no parent model")
	// ErrUnitInUse is returned when two packages claim the same file unit.
	ErrUnitInUse = errors.New("unit number already in use")
)

// Model owns the registered packages and the settings they share: name,
// output workspace, number of stress periods and, optionally, the grid.
type Model struct {
	Name      string
	Workspace string
	Nper      int
	Grid      *grid.Definition

	logger *log.Logger
	pkgs   []Package
}

// ModelOption configures a Model
type ModelOption func(*Model)

func WithWorkspace(dir string) ModelOption { return func(m *Model) { m.Workspace = dir } }
func WithNper(nper int) ModelOption        { return func(m *Model) { m.Nper = nper } }
func WithGrid(gd *grid.Definition) ModelOption {
	return func(m *Model) { m.Grid = gd }
}
func WithLogger(l *log.Logger) ModelOption { return func(m *Model) { m.logger = l } }

// NewModel returns an empty model; defaults are workspace ".", one stress
// period and no grid.
func NewModel(name string, opts ...ModelOption) *Model {
	m := &Model{
		Name:      name,
		Workspace: ".",
		Nper:      1,
	}
	for _, o := range opts {
		o(m)
	}
	if m.Name == "" {
		m.Name = "modflowtest"
	}
	m.Logger()
	return m
}

// Logger returns the model logger, creating the default one (stderr, warn
// level) on first use.
func (m *Model) Logger() *log.Logger {
	if m.logger == nil {
		m.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "modflow",
			Level:  log.WarnLevel,
		})
	}
	return m.logger
}

// AddPackage registers p. A package of the same ftype already present is
// replaced; a different package holding the same unit number is an error.
func (m *Model) AddPackage(p Package) error {
	if p.Unit() == listUnit {
		return fmt.Errorf("%w: %s unit %d is reserved for the list file", ErrUnitInUse, p.Ftype(), p.Unit())
	}
	ip := -1
	for i, q := range m.pkgs {
		if strings.EqualFold(q.Ftype(), p.Ftype()) {
			ip = i
			continue
		}
		if q.Unit() == p.Unit() {
			return fmt.Errorf("%w: %s unit %d is used by %s", ErrUnitInUse, p.Ftype(), p.Unit(), q.Ftype())
		}
	}
	if ip >= 0 {
		m.Logger().Warn("replacing package", "ftype", p.Ftype(), "unit", p.Unit())
		m.pkgs[ip] = p
		return nil
	}
	m.pkgs = append(m.pkgs, p)
	m.Logger().Debug("package added", "ftype", p.Ftype(), "unit", p.Unit(), "file", p.FileName())
	return nil
}

// GetPackage returns the registered package of the given ftype, or nil.
func (m *Model) GetPackage(ftype string) Package {
	for _, p := range m.pkgs {
		if strings.EqualFold(p.Ftype(), ftype) {
			return p
		}
	}
	return nil
}

// RemovePackage unregisters the package of the given ftype, reporting
// whether one was found.
func (m *Model) RemovePackage(ftype string) bool {
	for i, p := range m.pkgs {
		if strings.EqualFold(p.Ftype(), ftype) {
			m.pkgs = append(m.pkgs[:i], m.pkgs[i+1:]...)
			return true
		}
	}
	return false
}

// Packages returns the registered packages in registration order.
func (m *Model) Packages() []Package { return append([]Package(nil), m.pkgs...) }

// Check runs every package check and joins the failures.
func (m *Model) Check() error {
	var errs []error
	for _, p := range m.pkgs {
		if err := p.Check(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Ftype(), err))
		}
	}
	return errors.Join(errs...)
}

// WriteInput writes every registered package, then the name file. The
// workspace is created when missing. The first failure stops the export.
func (m *Model) WriteInput() error {
	if err := os.MkdirAll(m.Workspace, 0755); err != nil {
		return fmt.Errorf("WriteInput failed: %w", err)
	}
	for _, p := range m.pkgs {
		m.Logger().Debug("writing package", "ftype", p.Ftype(), "file", p.FileName())
		if err := p.WriteFile(); err != nil {
			return fmt.Errorf("WriteInput %s: %w", p.Ftype(), err)
		}
	}
	return m.WriteNameFile()
}

// NameFilePath is the path of <name>.nam in the workspace.
func (m *Model) NameFilePath() string {
	return filepath.Join(m.Workspace, m.Name+".nam")
}

// WriteNameFile writes the name file listing the list file and every
// registered package with its unit number.
func (m *Model) WriteNameFile() error {
	tw, err := mmio.NewTXTwriter(m.NameFilePath())
	if err != nil {
		return fmt.Errorf("WriteNameFile failed: %w", err)
	}
	defer tw.Close()

	if err := tw.WriteLine(nameHeading); err != nil {
		return fmt.Errorf("WriteNameFile failed: %w", err)
	}
	if err := tw.WriteLine(nameEntry("LIST", listUnit, m.Name+".list")); err != nil {
		return fmt.Errorf("WriteNameFile failed: %w", err)
	}
	for _, p := range m.pkgs {
		if err := tw.WriteLine(nameEntry(p.Ftype(), p.Unit(), p.FileName())); err != nil {
			return fmt.Errorf("WriteNameFile failed: %w", err)
		}
	}
	if err := tw.Writer.Flush(); err != nil {
		return fmt.Errorf("WriteNameFile failed: %w", err)
	}
	return nil
}

func nameEntry(ftype string, unit int, fn string) string {
	return fmt.Sprintf("%-14s %5d  %s", ftype, unit, fn)
}
