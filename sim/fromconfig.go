package sim

import (
	"fmt"

	"github.com/TobiasSchwering/AcCoRD/actorsim"
	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/config"
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// FromConfig translates a parsed configuration document into the
// region/chem/actor specs NewRealization needs (§6 External interfaces:
// "for the core, only the parsed, validated record is required; the text
// format is an external collaborator concern" — this is that boundary).
func FromConfig(c *config.Config) (Config, error) {
	regionSpecs := make([]region.Spec, len(c.Environment.Regions))
	for i, rr := range c.Environment.Regions {
		spec, err := regionSpecFromRecord(rr)
		if err != nil {
			return Config{}, &FatalError{Kind: KindConfigurationMalformed, Phase: "config.FromConfig",
				Entity: fmt.Sprintf("region %q (index %d)", rr.Label, i), Cause: err}
		}
		spec.DT = c.SimulationControl.MicroDT
		regionSpecs[i] = spec
	}

	numTypes := c.ChemicalProperties.NumMoleculeTypes
	reactionSpecs := make([]chem.Spec, len(c.ChemicalProperties.Reactions))
	for i, rec := range c.ChemicalProperties.Reactions {
		spec, err := reactionSpecFromRecord(rec, numTypes)
		if err != nil {
			return Config{}, &FatalError{Kind: KindConfigurationMalformed, Phase: "config.FromConfig",
				Entity: fmt.Sprintf("reaction %q (index %d)", rec.Label, i), Cause: err}
		}
		reactionSpecs[i] = spec
	}

	actorSpecs := make([]actorsim.Spec, len(c.Environment.Actors))
	for i, rec := range c.Environment.Actors {
		actorSpecs[i] = actorSpecFromRecord(rec, numTypes)
	}

	return Config{
		RegionSpecs:   regionSpecs,
		ReactionSpecs: reactionSpecs,
		ActorSpecs:    actorSpecs,
		DiffCoeff:     c.ChemicalProperties.DiffusionCoeff,
		BaseSize:      c.Environment.BaseSubvolumeSize,
		DistErr:       geom.DefaultDistError,
		MicroDT:       c.SimulationControl.MicroDT,
		FinalTime:     c.SimulationControl.FinalTime,
	}, nil
}

func regionSpecFromRecord(rr config.RegionRecord) (region.Spec, error) {
	anchor := geom.Point{X: rr.Anchor[0], Y: rr.Anchor[1], Z: rr.Anchor[2]}

	var shape geom.Shape
	switch rr.Shape {
	case "Rectangle":
		size := rr.IntegerSubvolumeSize * float64(maxInt(rr.NX, 1))
		hi := anchor
		hi.X += size
		hi.Y += rr.IntegerSubvolumeSize * float64(maxInt(rr.NY, 1))
		shape = geom.NewRectangle(anchor, hi)
	case "Rectangular Box":
		hi := geom.Point{
			X: anchor.X + rr.IntegerSubvolumeSize*float64(maxInt(rr.NX, 1)),
			Y: anchor.Y + rr.IntegerSubvolumeSize*float64(maxInt(rr.NY, 1)),
			Z: anchor.Z + rr.IntegerSubvolumeSize*float64(maxInt(rr.NZ, 1)),
		}
		shape = geom.NewBox(anchor, hi)
	case "Sphere":
		shape = geom.NewSphere(anchor, rr.Radius)
	case "Cylinder":
		shape = geom.NewCylinder(anchor, rr.Radius, rr.Length, geom.AxisZ)
	default:
		return region.Spec{}, fmt.Errorf("unknown region shape %q", rr.Shape)
	}

	kind, err := regionKindFromString(rr.Type)
	if err != nil {
		return region.Spec{}, err
	}
	surfaceKind := regionSurfaceKindFromString(rr.SurfaceType)

	return region.Spec{
		Label:         rr.Label,
		ParentLabel:   rr.ParentLabel,
		Shape:         shape,
		Kind:          kind,
		SurfaceKind:   surfaceKind,
		IsMicroscopic: rr.IsMicroscopic,
		NX:            rr.NX, NY: rr.NY, NZ: rr.NZ,
		SubSize: 1,
		Flow:    flowFromRecord(rr.Flow),
	}, nil
}

func regionKindFromString(s string) (region.Kind, error) {
	switch s {
	case "", "Normal":
		return region.Normal, nil
	case "2D Surface":
		return region.Surface2D, nil
	case "3D Surface":
		return region.Surface3D, nil
	default:
		return region.Normal, fmt.Errorf("unknown region type %q", s)
	}
}

func regionSurfaceKindFromString(s string) region.SurfaceKind {
	switch s {
	case "Membrane":
		return region.Membrane
	case "Inner":
		return region.Inner
	case "Outer":
		return region.Outer
	default:
		return region.SurfaceNone
	}
}

func flowFromRecord(fr config.FlowRecord) region.Flow {
	fn := region.FlowLinear
	if fr.Function == "Sinus" {
		fn = region.FlowSinus
	}
	profile := region.FlowUniform
	if fr.Profile == "Laminar" {
		profile = region.FlowLaminar
	}
	return region.Flow{
		Enabled: fr.Enabled, Velocity: fr.Velocity, Accel: fr.Accel,
		Function: fn, Frequency: fr.Frequency, Amplitude: fr.Amplitude, Profile: profile,
	}
}

func reactionSpecFromRecord(rec config.ReactionRecord, numTypes int) (chem.Spec, error) {
	surfaceKind := chem.Normal
	switch rec.SurfaceReactionType {
	case "", "Normal":
		surfaceKind = chem.Normal
	case "Absorbing":
		surfaceKind = chem.Absorbing
	case "Receptor Binding":
		surfaceKind = chem.Receptor
	case "Membrane":
		surfaceKind = chem.Membrane
	default:
		return chem.Spec{}, fmt.Errorf("unknown surface_reaction_type %q", rec.SurfaceReactionType)
	}
	return chem.Spec{
		Label:             rec.Label,
		Reactants:         padInts(rec.Reactants, numTypes),
		Products:          padInts(rec.Products, numTypes),
		Rate:              rec.K,
		IsSurface:         rec.Surface,
		Surface:           surfaceKind,
		DefaultEverywhere: rec.DefaultEverywhere,
		Exceptions:        rec.ExceptionRegions,
	}, nil
}

func actorSpecFromRecord(rec config.ActorRecord, numTypes int) actorsim.Spec {
	fp := actorsim.Footprint{RegionLabels: rec.FootprintRegions}
	if len(rec.FootprintRegions) == 0 {
		fp.Shape = footprintShapeFromRecord(rec)
	}

	var recordPosMask []bool
	if rec.RecordPositions {
		recordPosMask = make([]bool, numTypes)
		for i := range recordPosMask {
			recordPosMask[i] = true
		}
	}

	return actorsim.Spec{
		Label:          rec.Label,
		Footprint:      fp,
		IsActive:       rec.Active,
		StartTime:      rec.StartTime,
		ActionInterval: rec.ActionInterval,
		MaxActions:     rec.MaxActions,
		Modulation: actorsim.Modulation{
			BitsPerSymbol:   rec.Modulation.BitsPerSymbol,
			Strength:        rec.Modulation.Strength,
			ProbabilityOne:  rec.Modulation.ProbabilityOne,
			SlotInterval:    rec.Modulation.SlotInterval,
			ReleaseInterval: rec.Modulation.ReleaseInterval,
			TimeReleaseRand: rec.Modulation.TimeReleaseRand,
			DataBits:        rec.Modulation.DataBits,
		},
		ReleaseMask:   padBools(rec.Modulation.ReleaseMask, numTypes),
		ObserveMask:   padBools(rec.ObserveMask, numTypes),
		RecordPosMask: recordPosMask,
		RecordTime:    rec.RecordTime,
	}
}

// footprintShapeFromRecord resolves a literal-shape footprint descriptor
// (§6 footprint is "explicit shape or list of region labels"). Unrecognized
// or unset shapes fall back to a degenerate point footprint at the anchor.
func footprintShapeFromRecord(rec config.ActorRecord) geom.Shape {
	anchor := geom.Point{X: rec.FootprintAnchor[0], Y: rec.FootprintAnchor[1], Z: rec.FootprintAnchor[2]}
	hi := geom.Point{X: rec.FootprintHi[0], Y: rec.FootprintHi[1], Z: rec.FootprintHi[2]}

	switch rec.FootprintShape {
	case "Sphere":
		return geom.NewSphere(anchor, rec.FootprintRadius)
	case "Rectangular Box":
		return geom.NewBox(anchor, hi)
	case "Rectangle":
		return geom.NewRectangle(anchor, hi)
	default:
		return geom.NewBox(anchor, anchor)
	}
}

func padInts(v []int, n int) []int {
	out := make([]int, n)
	copy(out, v)
	return out
}

func padBools(v []bool, n int) []bool {
	out := make([]bool, n)
	copy(out, v)
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
