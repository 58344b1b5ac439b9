// Package config loads project files describing a MODFLOW model and its CHD
// package. TOML, YAML and JSON are read through viper; .hcl files through
// hashicorp/hcl.
package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	DefaultExtension  = "chd"
	DefaultUnitNumber = 24
)

// ErrNoChd is returned when a project has no chd section.
var ErrNoChd = errors.New("project has no chd section")

// Project is the content of a project file
type Project struct {
	Model ModelConfig `mapstructure:"model" toml:"model" hcl:"model,block"`
	Chd   *ChdConfig  `mapstructure:"chd" toml:"chd" hcl:"chd,block"`

	dir string // directory of the loaded file, for relative paths
}

// ModelConfig describes the owning model. The grid comes from Gdef (a grid
// definition file) or from Nlay/Nrow/Ncol; without either no grid check is
// made.
type ModelConfig struct {
	Name      string `mapstructure:"name" toml:"name" hcl:"name"`
	Workspace string `mapstructure:"workspace" toml:"workspace,omitempty" hcl:"workspace,optional"`
	Nper      int    `mapstructure:"nper" toml:"nper,omitempty" hcl:"nper,optional"`
	Nlay      int    `mapstructure:"nlay" toml:"nlay,omitempty" hcl:"nlay,optional"`
	Nrow      int    `mapstructure:"nrow" toml:"nrow,omitempty" hcl:"nrow,optional"`
	Ncol      int    `mapstructure:"ncol" toml:"ncol,omitempty" hcl:"ncol,optional"`
	Gdef      string `mapstructure:"gdef" toml:"gdef,omitempty" hcl:"gdef,optional"`
}

// ChdConfig describes the constant-head package
type ChdConfig struct {
	Extension  string         `mapstructure:"extension" toml:"extension,omitempty" hcl:"extension,optional"`
	UnitNumber int            `mapstructure:"unitnumber" toml:"unitnumber,omitempty" hcl:"unitnumber,optional"`
	Dtype      []FieldConfig  `mapstructure:"dtype" toml:"dtype,omitempty" hcl:"dtype,block"`
	Periods    []PeriodConfig `mapstructure:"period" toml:"period" hcl:"period,block"`
}

// FieldConfig is one dtype column; Kind is parsed by mflist.ParseKind.
type FieldConfig struct {
	Name string `mapstructure:"name" toml:"name" hcl:"name"`
	Kind string `mapstructure:"kind" toml:"kind" hcl:"kind"`
}

// PeriodConfig holds the records of one (zero-based) stress period.
type PeriodConfig struct {
	Kper    int         `mapstructure:"kper" toml:"kper" hcl:"kper"`
	Records [][]float64 `mapstructure:"records" toml:"records" hcl:"records"`
}

// Load reads a project file, choosing the decoder by extension.
func Load(fp string) (*Project, error) {
	var (
		p   *Project
		err error
	)
	switch strings.ToLower(filepath.Ext(fp)) {
	case ".hcl":
		p, err = loadHCL(fp)
	default:
		p, err = loadViper(fp)
	}
	if err != nil {
		return nil, err
	}
	p.dir = filepath.Dir(fp)
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", fp, err)
	}
	return p, nil
}

func loadViper(fp string) (*Project, error) {
	v := viper.New()
	v.SetDefault("model.workspace", ".")
	v.SetDefault("model.nper", 1)

	v.SetConfigFile(fp)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", fp, err)
	}
	var p Project
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", fp, err)
	}
	return &p, nil
}

func loadHCL(fp string) (*Project, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(fp)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", fp, diags.Error())
	}
	var p Project
	diags = gohcl.DecodeBody(file.Body, nil, &p)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", fp, diags.Error())
	}
	return &p, nil
}

func (p *Project) applyDefaults() {
	if p.Model.Workspace == "" {
		p.Model.Workspace = "."
	}
	if p.Model.Nper <= 0 {
		p.Model.Nper = 1
	}
	if p.Chd == nil {
		return
	}
	if p.Chd.Extension == "" {
		p.Chd.Extension = DefaultExtension
	}
	if p.Chd.UnitNumber == 0 {
		p.Chd.UnitNumber = DefaultUnitNumber
	}
}

// Validate checks the structural rules a decoder cannot: a model name, a chd
// section and unique stress periods.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Model.Name) == "" {
		return errors.New("model.name is required")
	}
	if p.Chd == nil {
		return ErrNoChd
	}
	seen := make(map[int]bool, len(p.Chd.Periods))
	for _, sp := range p.Chd.Periods {
		if sp.Kper < 0 {
			return fmt.Errorf("chd.period: negative kper %d", sp.Kper)
		}
		if seen[sp.Kper] {
			return fmt.Errorf("chd.period: kper %d defined more than once", sp.Kper)
		}
		seen[sp.Kper] = true
	}
	return nil
}

// Example returns a small project used by `mfchd init`.
func Example() *Project {
	return &Project{
		Model: ModelConfig{
			Name:      "mymodel",
			Workspace: ".",
			Nper:      3,
			Nlay:      3,
			Nrow:      10,
			Ncol:      10,
		},
		Chd: &ChdConfig{
			Extension:  DefaultExtension,
			UnitNumber: DefaultUnitNumber,
			Periods: []PeriodConfig{
				{Kper: 0, Records: [][]float64{{2, 3, 4, 10.0, 10.1}}},
				{Kper: 2, Records: [][]float64{{2, 3, 4, 10.1, 10.2}, {2, 3, 5, 10.1, 10.2}}},
			},
		},
	}
}

// Encode writes p as TOML.
func Encode(w io.Writer, p *Project) error {
	if err := toml.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("config.Encode failed: %w", err)
	}
	return nil
}
