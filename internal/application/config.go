package application

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nglaser3/stochvol/internal/domain"
)

// SessionConfig is the declarative YAML specification of a calculation:
// the bounding box, the tracked domains with their synthetic shapes and
// optional material compositions, sampling controls, convergence
// triggers, and snapshot persistence.
type SessionConfig struct {
	// Metadata contains descriptive information about the calculation.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Box defines the axis-aligned sampling universe.
	Box BoxConfig `yaml:"bounding_box" validate:"required"`
	// Domains lists the tracked domains. Each carries a synthetic shape
	// so the calculation is runnable without an external geometry engine.
	Domains []DomainConfig `yaml:"domains" validate:"required,min=1,dive"`
	// Sampling holds batch size, sample budget, seed, and worker count.
	Sampling SamplingConfig `yaml:"sampling" validate:"required"`
	// Triggers optionally attach per-domain precision targets.
	Triggers []TriggerConfig `yaml:"triggers" validate:"dive"`
	// Snapshot optionally persists the finished session's counts.
	Snapshot *SnapshotConfig `yaml:"snapshot"`
}

// Metadata provides descriptive information about a calculation for
// logging and snapshot identification.
type Metadata struct {
	// Name is the human-readable identifier for this calculation.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description explains the calculation's purpose.
	Description string `yaml:"description" validate:"max=1000"`
}

// BoxConfig defines bounding-box corners as [x, y, z] triples.
// The upper corner must dominate the lower corner on every axis.
type BoxConfig struct {
	Lower [3]float64 `yaml:"lower"`
	Upper [3]float64 `yaml:"upper"`
}

// BoundingBox converts the config corners to a validated domain box.
func (b BoxConfig) BoundingBox() (domain.BoundingBox, error) {
	return domain.NewBoundingBox(
		domain.Point3{X: b.Lower[0], Y: b.Lower[1], Z: b.Lower[2]},
		domain.Point3{X: b.Upper[0], Y: b.Upper[1], Z: b.Upper[2]},
	)
}

// DomainConfig declares one tracked domain: its identifier, the
// synthetic shape that classifies points into it, and optional nuclide
// atom densities for atom-count estimates.
type DomainConfig struct {
	// ID is the domain identifier, unique within the calculation.
	ID int32 `yaml:"id" validate:"required"`
	// Shape describes the region occupied by the domain.
	Shape ShapeConfig `yaml:"shape" validate:"required"`
	// Nuclides maps nuclide names to atom densities in atoms/cm³.
	// When present, results include atom-count estimates with
	// propagated uncertainty.
	Nuclides map[string]float64 `yaml:"nuclides" validate:"omitempty,dive,gt=0"`
}

// ShapeConfig describes a synthetic region. The kind selects which
// fields are meaningful: box uses lower/upper, sphere uses
// center/radius, and complement takes no parameters — it matches every
// point of the bounding box not claimed by any other listed domain.
type ShapeConfig struct {
	Kind   string     `yaml:"kind" validate:"required,oneof=box sphere complement"`
	Lower  [3]float64 `yaml:"lower"`
	Upper  [3]float64 `yaml:"upper"`
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius" validate:"omitempty,gt=0"`
}

// SamplingConfig holds the sampling controls of a calculation.
type SamplingConfig struct {
	// BatchSize is the number of points drawn per round.
	BatchSize uint64 `yaml:"batch_size" validate:"required,min=1"`
	// MaxSamples bounds the total points drawn; with no triggers it is
	// the exact sample count of the calculation.
	MaxSamples uint64 `yaml:"max_samples" validate:"required,min=1"`
	// CheckInterval is the number of samples between trigger checks.
	// Defaults to BatchSize; must be a multiple of it.
	CheckInterval uint64 `yaml:"check_interval" validate:"omitempty,min=1"`
	// Seed makes sampling reproducible across runs.
	Seed uint64 `yaml:"seed"`
	// Workers caps concurrent classification goroutines per batch.
	Workers int `yaml:"workers" validate:"omitempty,min=1,max=4096"`
}

// TriggerConfig attaches a precision target to one domain.
type TriggerConfig struct {
	Domain    int32   `yaml:"domain" validate:"required"`
	Kind      string  `yaml:"kind" validate:"required,oneof=variance std_dev rel_err"`
	Threshold float64 `yaml:"threshold" validate:"required,gt=0"`
}

// Spec converts the config entry to a domain trigger specification.
func (t TriggerConfig) Spec() domain.TriggerSpec {
	return domain.TriggerSpec{
		Domain:    domain.DomainID(t.Domain),
		Kind:      domain.TriggerKind(t.Kind),
		Threshold: t.Threshold,
	}
}

// SnapshotConfig selects where the finished session's counts are
// persisted.
type SnapshotConfig struct {
	// Format is the snapshot store backend.
	Format string `yaml:"format" validate:"required,oneof=json sqlite"`
	// Path is the file the store writes to.
	Path string `yaml:"path" validate:"required"`
}

// LoadSessionConfig reads and validates a session configuration from a
// YAML file.
func LoadSessionConfig(path string) (*SessionConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session config: %w", err)
	}
	defer f.Close()
	return ReadSessionConfig(f)
}

// ReadSessionConfig decodes and validates a session configuration from
// a reader. Unknown YAML fields are rejected so typos fail fast.
func ReadSessionConfig(r io.Reader) (*SessionConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read session config: %w", err)
	}

	var cfg SessionConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse session config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate performs struct-tag validation followed by semantic checks
// that tags cannot express: corner ordering, unique domain ids, trigger
// references, and complement shape constraints.
func (c *SessionConfig) Validate() error {
	verr := domain.NewValidationError("session config")

	if err := validate.Struct(c); err != nil {
		verr.AddError(err.Error())
	}

	if _, err := c.Box.BoundingBox(); err != nil {
		verr.AddError(err.Error())
	}

	seen := make(map[int32]struct{}, len(c.Domains))
	complements := 0
	for _, d := range c.Domains {
		if _, dup := seen[d.ID]; dup {
			verr.AddError(fmt.Sprintf("duplicate domain id %d", d.ID))
		}
		seen[d.ID] = struct{}{}

		switch d.Shape.Kind {
		case "box":
			if d.Shape.Upper[0] < d.Shape.Lower[0] ||
				d.Shape.Upper[1] < d.Shape.Lower[1] ||
				d.Shape.Upper[2] < d.Shape.Lower[2] {
				verr.AddError(fmt.Sprintf("domain %d: box shape corners are inverted", d.ID))
			}
		case "sphere":
			if d.Shape.Radius <= 0 {
				verr.AddError(fmt.Sprintf("domain %d: sphere shape requires a positive radius", d.ID))
			}
		case "complement":
			complements++
		}
	}
	if complements > 1 {
		verr.AddError("at most one complement domain is allowed")
	}

	for _, t := range c.Triggers {
		if _, ok := seen[t.Domain]; !ok {
			verr.AddError(fmt.Sprintf("trigger references unknown domain %d", t.Domain))
		}
	}

	if c.Sampling.CheckInterval != 0 && c.Sampling.BatchSize != 0 &&
		c.Sampling.CheckInterval%c.Sampling.BatchSize != 0 {
		verr.AddError(fmt.Sprintf("check interval %d is not a multiple of batch size %d",
			c.Sampling.CheckInterval, c.Sampling.BatchSize))
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// DomainIDs returns the tracked domain identifiers in declaration order.
func (c *SessionConfig) DomainIDs() []domain.DomainID {
	ids := make([]domain.DomainID, len(c.Domains))
	for i, d := range c.Domains {
		ids[i] = domain.DomainID(d.ID)
	}
	return ids
}

// TriggerSpecs converts the configured triggers to domain specs.
func (c *SessionConfig) TriggerSpecs() []domain.TriggerSpec {
	specs := make([]domain.TriggerSpec, len(c.Triggers))
	for i, t := range c.Triggers {
		specs[i] = t.Spec()
	}
	return specs
}

// Densities returns per-domain nuclide atom densities for the result
// aggregator. Domains without a composition are omitted.
func (c *SessionConfig) Densities() map[domain.DomainID]map[string]float64 {
	out := make(map[domain.DomainID]map[string]float64)
	for _, d := range c.Domains {
		if len(d.Nuclides) == 0 {
			continue
		}
		out[domain.DomainID(d.ID)] = d.Nuclides
	}
	return out
}

// SessionParams builds validated session parameters from the config.
func (c *SessionConfig) SessionParams() (SessionParams, error) {
	box, err := c.Box.BoundingBox()
	if err != nil {
		return SessionParams{}, err
	}
	return SessionParams{
		Box:           box,
		Domains:       c.DomainIDs(),
		BatchSize:     c.Sampling.BatchSize,
		MaxSamples:    c.Sampling.MaxSamples,
		CheckInterval: c.Sampling.CheckInterval,
		Workers:       c.Sampling.Workers,
	}, nil
}
