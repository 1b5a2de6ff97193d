package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"chargemodel/internal/dcf"
	"chargemodel/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load deployment assumptions from a separate YAML file.
	// If both AssumptionsFile and Assumptions are provided, Assumptions
	// overrides AssumptionsFile field by field.
	AssumptionsFile string            `yaml:"assumptions_file"`
	Assumptions     AssumptionsConfig `yaml:"assumptions"`
	Server          ServerConfig      `yaml:"server"`
	IRR             IRRConfig         `yaml:"irr"`
}

type AssumptionsConfig struct {
	ChargerPowerKW             float64 `yaml:"charger_power_kw"`
	HoursPerDay                float64 `yaml:"hours_per_day"`
	DaysPerYear                float64 `yaml:"days_per_year"`
	EmissionFactorTonnesPerKWh float64 `yaml:"emission_factor_tonnes_per_kwh"`
	// nil means "use the default ramp"; an explicit empty list disables
	// ramping entirely.
	RampFactors []float64 `yaml:"ramp_factors"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
	DBPath    string `yaml:"db_path"`
}

// IRRConfig keeps the root-finder's seed and clamp bounds in configuration
// so results stay comparable across deployments. Merging is non-zero-wins:
// a field left at 0 means "use the built-in default", so a literal zero
// seed or clamp bound is not expressible here.
type IRRConfig struct {
	Seed          float64 `yaml:"seed"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	ClampMin      float64 `yaml:"clamp_min"`
	ClampMax      float64 `yaml:"clamp_max"`
}

// Default returns a config carrying the built-in deployment assumptions and
// IRR parameters.
func Default() *Config {
	c := &Config{
		Server: ServerConfig{
			Port:   "8080",
			DBPath: "chargemodel.db",
		},
	}
	c.Assumptions = fromModelAssumptions(model.DefaultAssumptions())
	c.IRR = fromIRRParams(dcf.DefaultIRRParams())
	return c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If assumptions_file is set, load it and merge in any explicit
	// overrides from the main config.
	if c.AssumptionsFile != "" {
		assumptionsPath := c.AssumptionsFile
		if !filepath.IsAbs(assumptionsPath) {
			// Prefer interpreting relative paths as relative to the config
			// file directory, falling back to the path as given.
			cand := filepath.Join(filepath.Dir(path), assumptionsPath)
			if _, err := os.Stat(cand); err == nil {
				assumptionsPath = cand
			}
		}
		loaded, err := loadAssumptionsFile(assumptionsPath)
		if err != nil {
			return nil, err
		}
		c.Assumptions = MergeAssumptions(loaded, c.Assumptions)
	}
	// Unset fields fall back to the built-in defaults.
	c.Assumptions = MergeAssumptions(Default().Assumptions, c.Assumptions)
	c.IRR = mergeIRR(Default().IRR, c.IRR)
	if c.Server.Port == "" {
		c.Server.Port = Default().Server.Port
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = Default().Server.DBPath
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	a := c.Assumptions.ToModelAssumptions()
	if err := a.Validate(); err != nil {
		return fmt.Errorf("assumptions config invalid: %w", err)
	}
	if c.IRR.Tolerance <= 0 {
		return errors.New("irr.tolerance must be > 0")
	}
	if c.IRR.MaxIterations <= 0 {
		return errors.New("irr.max_iterations must be > 0")
	}
	if c.IRR.ClampMin <= -1 || c.IRR.ClampMin >= c.IRR.ClampMax {
		return errors.New("irr clamp bounds must satisfy -1 < clamp_min < clamp_max")
	}
	return nil
}

func (a AssumptionsConfig) ToModelAssumptions() model.Assumptions {
	m := model.Assumptions{
		ChargerPowerKW:             a.ChargerPowerKW,
		HoursPerDay:                a.HoursPerDay,
		DaysPerYear:                a.DaysPerYear,
		EmissionFactorTonnesPerKWh: a.EmissionFactorTonnesPerKWh,
	}
	if a.RampFactors != nil {
		m.RampFactors = append([]float64(nil), a.RampFactors...)
	}
	return m
}

func fromModelAssumptions(m model.Assumptions) AssumptionsConfig {
	return AssumptionsConfig{
		ChargerPowerKW:             m.ChargerPowerKW,
		HoursPerDay:                m.HoursPerDay,
		DaysPerYear:                m.DaysPerYear,
		EmissionFactorTonnesPerKWh: m.EmissionFactorTonnesPerKWh,
		RampFactors:                m.RampFactors,
	}
}

func (c IRRConfig) ToIRRParams() dcf.IRRParams {
	return dcf.IRRParams{
		Seed:          c.Seed,
		Tolerance:     c.Tolerance,
		MaxIterations: c.MaxIterations,
		ClampMin:      c.ClampMin,
		ClampMax:      c.ClampMax,
	}
}

func fromIRRParams(p dcf.IRRParams) IRRConfig {
	return IRRConfig{
		Seed:          p.Seed,
		Tolerance:     p.Tolerance,
		MaxIterations: p.MaxIterations,
		ClampMin:      p.ClampMin,
		ClampMax:      p.ClampMax,
	}
}

type assumptionsFileWrapper struct {
	Assumptions AssumptionsConfig `yaml:"assumptions"`
}

func loadAssumptionsFile(path string) (AssumptionsConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return AssumptionsConfig{}, err
	}
	var w assumptionsFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return AssumptionsConfig{}, err
	}
	return w.Assumptions, nil
}

// MergeAssumptions overlays non-zero fields from override onto base. A nil
// RampFactors is treated as unset; an empty one is an explicit "no ramp".
func MergeAssumptions(base, override AssumptionsConfig) AssumptionsConfig {
	out := base
	if override.ChargerPowerKW != 0 {
		out.ChargerPowerKW = override.ChargerPowerKW
	}
	if override.HoursPerDay != 0 {
		out.HoursPerDay = override.HoursPerDay
	}
	if override.DaysPerYear != 0 {
		out.DaysPerYear = override.DaysPerYear
	}
	if override.EmissionFactorTonnesPerKWh != 0 {
		out.EmissionFactorTonnesPerKWh = override.EmissionFactorTonnesPerKWh
	}
	if override.RampFactors != nil {
		out.RampFactors = override.RampFactors
	}
	return out
}

func mergeIRR(base, override IRRConfig) IRRConfig {
	out := base
	if override.Seed != 0 {
		out.Seed = override.Seed
	}
	if override.Tolerance != 0 {
		out.Tolerance = override.Tolerance
	}
	if override.MaxIterations != 0 {
		out.MaxIterations = override.MaxIterations
	}
	if override.ClampMin != 0 {
		out.ClampMin = override.ClampMin
	}
	if override.ClampMax != 0 {
		out.ClampMax = override.ClampMax
	}
	return out
}
