// Package config provides configuration loading and access for the
// simulation: the four-section document of §6 External interfaces
// (Simulation Control, Chemical Properties, Environment, Notes).
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the full parsed configuration document.
type Config struct {
	SimulationControl SimulationControlConfig `yaml:"simulation_control"`
	ChemicalProperties ChemicalPropertiesConfig `yaml:"chemical_properties"`
	Environment        EnvironmentConfig        `yaml:"environment"`
	Notes               string                   `yaml:"notes"`

	// Derived holds values computed after loading that the engine reads
	// directly instead of re-deriving from the raw document every time.
	Derived DerivedConfig `yaml:"-"`

	// Warnings accumulates ConfigurationWarning messages raised while
	// default-filling missing/out-of-range fields (§7).
	Warnings []string `yaml:"-"`
}

// SimulationControlConfig holds the run-level parameters of §6.
type SimulationControlConfig struct {
	Repeats          int     `yaml:"repeats"`
	FinalTime        float64 `yaml:"final_time"`
	MicroDT          float64 `yaml:"micro_dt"`
	Seed             int64   `yaml:"seed"`
	MaxProgressUpdates int   `yaml:"max_progress_updates"`
	WarningOverride  bool    `yaml:"warning_override"`
}

// ChemicalPropertiesConfig holds the molecule-type and reaction list of §6.
type ChemicalPropertiesConfig struct {
	NumMoleculeTypes int              `yaml:"num_molecule_types"`
	DiffusionCoeff   []float64        `yaml:"diffusion_coeff"` // per type, m^2/s
	Reactions        []ReactionRecord `yaml:"reactions"`
}

// ReactionRecord is one reaction document entry (§6 Per reaction record).
type ReactionRecord struct {
	Label               string    `yaml:"label"`
	Reactants           []int     `yaml:"reactants"`
	Products            []int     `yaml:"products"`
	K                   float64   `yaml:"k"`
	Surface             bool      `yaml:"surface"`
	SurfaceReactionType string    `yaml:"surface_reaction_type"` // Normal, Absorbing, "Receptor Binding", Membrane
	DefaultEverywhere   bool      `yaml:"default_everywhere"`
	ExceptionRegions    []string  `yaml:"exception_regions"`
}

// EnvironmentConfig holds the dimensionality, region list, and actor list
// of §6.
type EnvironmentConfig struct {
	NumDimensions    int              `yaml:"num_dimensions"`
	BaseSubvolumeSize float64         `yaml:"base_subvolume_size"`
	Regions          []RegionRecord   `yaml:"regions"`
	Actors           []ActorRecord    `yaml:"actors"`
}

// RegionRecord is one region document entry (§6 Per region record).
type RegionRecord struct {
	Label              string    `yaml:"label"`
	ParentLabel         string    `yaml:"parent_label"`
	Shape               string    `yaml:"shape"` // Rectangle, "Rectangular Box", Sphere, Cylinder
	Type                string    `yaml:"type"`  // Normal, "3D Surface", "2D Surface"
	SurfaceType          string    `yaml:"surface_type"`
	Anchor               [3]float64 `yaml:"anchor"`
	IntegerSubvolumeSize float64   `yaml:"integer_subvolume_size"`
	IsMicroscopic        bool      `yaml:"is_microscopic"`
	NX                   int       `yaml:"nx"`
	NY                   int       `yaml:"ny"`
	NZ                   int       `yaml:"nz"`
	Radius               float64   `yaml:"radius"`
	Length               float64   `yaml:"length"`

	Flow FlowRecord `yaml:"flow"`
}

// FlowRecord describes cylinder-only flow/advection (§6, §4.D.1).
type FlowRecord struct {
	Enabled   bool    `yaml:"enabled"`
	Velocity  float64 `yaml:"velocity"`
	Accel     float64 `yaml:"accel"`
	Function  string  `yaml:"function"` // Linear, Sinus
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	Profile   string  `yaml:"profile"` // Uniform, Laminar
}

// ActorRecord is one actor document entry (§6 Per actor record).
type ActorRecord struct {
	Label          string   `yaml:"label"`
	FootprintShape  string     `yaml:"footprint_shape"` // Point, Sphere, "Rectangular Box", Rectangle
	FootprintAnchor [3]float64 `yaml:"footprint_anchor"`
	FootprintHi     [3]float64 `yaml:"footprint_hi"`     // far corner, for Box/Rectangle
	FootprintRadius float64    `yaml:"footprint_radius"` // for Sphere
	FootprintRegions []string `yaml:"footprint_regions"`
	Active          bool     `yaml:"active"`
	StartTime       float64  `yaml:"start_time"`
	ActionInterval  float64  `yaml:"action_interval"`
	MaxActions      int      `yaml:"max_actions"`

	Modulation  ModulationRecord `yaml:"modulation"`
	ObserveMask []bool           `yaml:"observe_mask"`
	RecordPositions bool         `yaml:"record_positions"`
	RecordTime      bool         `yaml:"record_time"`
}

// ModulationRecord holds an active actor's CSK release parameters.
type ModulationRecord struct {
	BitsPerSymbol   int     `yaml:"bits_per_symbol"`
	Strength        float64 `yaml:"strength"`
	ProbabilityOne  float64 `yaml:"probability_one"`
	SlotInterval    float64 `yaml:"slot_interval"`
	ReleaseInterval float64 `yaml:"release_interval"`
	TimeReleaseRand bool    `yaml:"time_release_rand"`
	ReleaseMask     []bool  `yaml:"release_mask"`
	DataBits        []bool  `yaml:"data_bits"`
}

// DerivedConfig holds values computed after loading.
type DerivedConfig struct {
	NumMoleculeTypes int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file on top of the embedded
// defaults. Fields absent from the file keep the embedded default without
// a warning; applyDefaultsAndWarn then repairs missing or out-of-range
// values and records a warning for each repair.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaultsAndWarn()
	return cfg, nil
}

// applyDefaultsAndWarn repairs missing/out-of-range fields that have a
// documented default, recording a warning for each (§7
// ConfigurationWarning). An invalid geometry is not repaired here — it
// surfaces fatally from region.Build/chem.Compile instead.
func (c *Config) applyDefaultsAndWarn() {
	sc := &c.SimulationControl
	if sc.Repeats <= 0 {
		sc.Repeats = 1
		c.warn("simulation_control.repeats missing or <= 0, defaulting to 1")
	}
	if sc.MicroDT <= 0 {
		sc.MicroDT = 1e-6
		c.warn("simulation_control.micro_dt missing or <= 0, defaulting to 1e-6")
	}
	if sc.MaxProgressUpdates <= 0 {
		sc.MaxProgressUpdates = 100
		c.warn("simulation_control.max_progress_updates missing or <= 0, defaulting to 100")
	}

	cp := &c.ChemicalProperties
	if cp.NumMoleculeTypes <= 0 {
		cp.NumMoleculeTypes = len(cp.DiffusionCoeff)
		if cp.NumMoleculeTypes == 0 {
			cp.NumMoleculeTypes = 1
		}
		c.warn("chemical_properties.num_molecule_types missing, inferring from diffusion_coeff")
	}
	if len(cp.DiffusionCoeff) < cp.NumMoleculeTypes {
		for len(cp.DiffusionCoeff) < cp.NumMoleculeTypes {
			cp.DiffusionCoeff = append(cp.DiffusionCoeff, 0)
			c.warn("chemical_properties.diffusion_coeff missing an entry, defaulting to 0")
		}
	}

	env := &c.Environment
	if env.NumDimensions <= 0 {
		env.NumDimensions = 3
		c.warn("environment.num_dimensions missing or <= 0, defaulting to 3")
	}
	if env.BaseSubvolumeSize <= 0 {
		env.BaseSubvolumeSize = 1
		c.warn("environment.base_subvolume_size missing or <= 0, defaulting to 1")
	}

	c.Derived.NumMoleculeTypes = cp.NumMoleculeTypes
}

func (c *Config) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

// WriteYAML writes the configuration to a YAML file. The output manager
// does not call it; no per-run config snapshot is written.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
