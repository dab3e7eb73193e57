package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
	"github.com/TobiasSchwering/AcCoRD/rng"
	"github.com/TobiasSchwering/AcCoRD/sched"
)

// These tests drive a real rng.Stream instead of stillSampler so that
// diffusion and reactions actually fire, and check the resulting behavior
// against the universal conservation invariant and the statistical
// properties of §8: free diffusion variance, reflecting-box equilibrium,
// well-mixed bimolecular kinetics, and hybrid micro/meso conservation.

func microCount(rz *Realization, regionID, typ int) int {
	l := rz.Micro.Lists[regionID][typ]
	return len(l.Steady) + len(l.Recent)
}

// TestLedgerConservationIsExact exercises a real reaction chain (not
// stillSampler) and checks the universal invariant of §8 (i): the change in
// total molecule count for each type equals the ledger's net change,
// exactly, every run.
func TestLedgerConservationIsExact(t *testing.T) {
	cfg := Config{
		RegionSpecs: []region.Spec{
			{Label: "bulk", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10}),
				NX: 1, NY: 1, NZ: 1, SubSize: 1, IsMicroscopic: true},
		},
		ReactionSpecs: []chem.Spec{
			{Label: "a_to_b", Reactants: []int{1, 0}, Products: []int{0, 1}, Rate: 50,
				DefaultEverywhere: true},
		},
		DiffCoeff: []float64{0, 0},
		BaseSize:  10,
		DistErr:   1e-9,
		MicroDT:   0.01,
		FinalTime: 0.3,
	}
	sampler := rng.New(7)
	rz, err := NewRealization(cfg, sampler)
	if err != nil {
		t.Fatal(err)
	}
	reg, ok := rz.Graph.RegionByLabel("bulk")
	if !ok {
		t.Fatal("expected bulk region")
	}

	const n = 200
	for i := 0; i < n; i++ {
		rz.Micro.Lists[reg.ID][0].Steady = append(rz.Micro.Lists[reg.ID][0].Steady, geom.Point{X: 5, Y: 5, Z: 5})
	}
	initial := []int64{n, 0}

	if err := rz.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for typ := 0; typ < 2; typ++ {
		got := int64(microCount(rz, reg.ID, typ)) - initial[typ]
		want := rz.Ledger.NetChange(typ)
		if got != want {
			t.Errorf("type %d: count changed by %d, ledger net change is %d", typ, got, want)
		}
	}
	if rz.Ledger.Consumed[0] == 0 {
		t.Error("expected at least one A->B reaction to have fired and been tallied as consumed")
	}
	if rz.Ledger.Produced[1] == 0 {
		t.Error("expected at least one A->B reaction to have fired and been tallied as produced")
	}
}

// TestFreeDiffusionVarianceMatchesTheory is §8 statistical property 1: a
// single molecule diffusing in a very large box, over N independent
// realizations, should have per-coordinate empirical variance equal to
// 2*D*T within ±2σ of the sampling distribution.
func TestFreeDiffusionVarianceMatchesTheory(t *testing.T) {
	const (
		d     = 1e-9
		dt    = 1e-4
		steps = 200
		tEnd  = float64(steps) * dt
		nRuns = 250
	)
	want := 2 * d * tEnd

	xs := make([]float64, nRuns)
	for i := 0; i < nRuns; i++ {
		cfg := Config{
			RegionSpecs: []region.Spec{
				{Label: "bulk", Shape: geom.NewBox(geom.Point{-1e-3, -1e-3, -1e-3}, geom.Point{1e-3, 1e-3, 1e-3}),
					NX: 1, NY: 1, NZ: 1, SubSize: 2e-3, IsMicroscopic: true},
			},
			DiffCoeff: []float64{d},
			BaseSize:  2e-3,
			DistErr:   1e-12,
			MicroDT:   dt,
			FinalTime: tEnd,
		}
		sampler := rng.New(int64(1000 + i))
		rz, err := NewRealization(cfg, sampler)
		if err != nil {
			t.Fatal(err)
		}
		reg, _ := rz.Graph.RegionByLabel("bulk")
		rz.Micro.Lists[reg.ID][0].Steady = append(rz.Micro.Lists[reg.ID][0].Steady, geom.Point{})
		if err := rz.Run(); err != nil {
			t.Fatal(err)
		}
		if n := microCount(rz, reg.ID, 0); n != 1 {
			t.Fatalf("run %d: expected the molecule to remain inside the box, got count %d", i, n)
		}
		xs[i] = rz.Micro.Lists[reg.ID][0].Steady[0].X
	}

	mean := stat.Mean(xs, nil)
	variance := stat.Variance(xs, nil)

	meanTolerance := 5 * math.Sqrt(want/float64(nRuns))
	if math.Abs(mean) > meanTolerance {
		t.Errorf("expected zero-mean displacement, got mean %v (tolerance %v)", mean, meanTolerance)
	}

	// Sampling error of a variance estimate from nRuns normal draws is
	// approximately want*sqrt(2/(nRuns-1)); require agreement within 2σ.
	sigma := want * math.Sqrt(2/float64(nRuns-1))
	if math.Abs(variance-want) > 2*sigma {
		t.Errorf("expected variance near 2*D*T=%v, got %v (2σ=%v)", want, variance, 2*sigma)
	}
}

// TestReflectingBoxReachesUniformDistribution is §8 statistical property 2:
// N molecules started at the center of a reflecting box reach a uniform
// spatial distribution once T far exceeds L²/D. A χ² test over a 2×2×2
// octant grid must fail to reject uniformity at the 1% level.
func TestReflectingBoxReachesUniformDistribution(t *testing.T) {
	const (
		l          = 1e-6
		d          = 1e-9
		dt         = 1e-4
		nMolecules = 400
	)
	tEnd := 10 * l * l / d

	cfg := Config{
		RegionSpecs: []region.Spec{
			{Label: "bulk", Shape: geom.NewBox(geom.Point{-l / 2, -l / 2, -l / 2}, geom.Point{l / 2, l / 2, l / 2}),
				NX: 1, NY: 1, NZ: 1, SubSize: l, IsMicroscopic: true},
		},
		DiffCoeff: []float64{d},
		BaseSize:  l,
		DistErr:   1e-12,
		MicroDT:   dt,
		FinalTime: tEnd,
	}
	sampler := rng.New(42)
	rz, err := NewRealization(cfg, sampler)
	if err != nil {
		t.Fatal(err)
	}
	reg, _ := rz.Graph.RegionByLabel("bulk")
	for i := 0; i < nMolecules; i++ {
		rz.Micro.Lists[reg.ID][0].Steady = append(rz.Micro.Lists[reg.ID][0].Steady, geom.Point{})
	}
	if err := rz.Run(); err != nil {
		t.Fatal(err)
	}

	var observed [8]float64
	for _, p := range rz.Micro.Lists[reg.ID][0].Steady {
		bin := 0
		if p.X >= 0 {
			bin |= 1
		}
		if p.Y >= 0 {
			bin |= 2
		}
		if p.Z >= 0 {
			bin |= 4
		}
		observed[bin]++
	}
	expected := make([]float64, 8)
	for i := range expected {
		expected[i] = float64(len(rz.Micro.Lists[reg.ID][0].Steady)) / 8
	}

	chi2 := stat.ChiSquare(observed[:], expected)
	critical := distuv.ChiSquared{K: 7}.Quantile(0.99)
	if chi2 > critical {
		t.Errorf("reflecting box did not reach uniform distribution: χ²=%v exceeds the 1%% critical value %v", chi2, critical)
	}
}

// TestBimolecularMeanTrajectoryMatchesODE is §8 statistical property 3: two
// species A, B with equal initial counts N reacting bimolecularly in a
// well-mixed volume should have an empirical mean trajectory matching the
// deterministic ODE d[A]/dt = -k[A][B] within 1/√N.
func TestBimolecularMeanTrajectoryMatchesODE(t *testing.T) {
	const (
		n0    = 50
		k     = 0.01
		tEnd  = 2.0
		nRuns = 200
	)
	// Closed-form solution of dx/dt = -k*x^2 (well-mixed, equal A/B counts,
	// unit volume so MesoRate = k).
	analytic := n0 / (1 + k*n0*tEnd)

	finals := make([]float64, nRuns)
	for i := 0; i < nRuns; i++ {
		cfg := Config{
			RegionSpecs: []region.Spec{
				{Label: "bulk", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{1, 1, 1}),
					NX: 1, NY: 1, NZ: 1, SubSize: 1},
			},
			ReactionSpecs: []chem.Spec{
				{Label: "a_plus_b", Reactants: []int{1, 1, 0}, Products: []int{0, 0, 1}, Rate: k,
					DefaultEverywhere: true},
			},
			DiffCoeff: []float64{0, 0, 0},
			BaseSize:  1,
			DistErr:   1e-9,
			MicroDT:   0.01,
			FinalTime: tEnd,
		}
		sampler := rng.New(int64(2000 + i))
		rz, err := NewRealization(cfg, sampler)
		if err != nil {
			t.Fatal(err)
		}
		reg, _ := rz.Graph.RegionByLabel("bulk")
		sub := rz.Graph.Subvolumes[reg.SubvolumeStart]
		sub.Counts[0] = n0
		sub.Counts[1] = n0
		rz.Meso.RefreshSubvolume(sub.MesoID, 0, sampler)
		if id, tau := rz.Meso.NextTau(); id >= 0 {
			rz.queue.Push(sched.Event{Time: tau, Kind: sched.KindMeso, ID: id})
		}
		if err := rz.Run(); err != nil {
			t.Fatal(err)
		}
		finals[i] = float64(sub.Counts[0])
	}

	mean := stat.Mean(finals, nil)
	tolerance := analytic / math.Sqrt(n0)
	if math.Abs(mean-analytic) > tolerance {
		t.Errorf("mean trajectory diverges from ODE solution: got %v, want %v (tolerance %v)", mean, analytic, tolerance)
	}
}

// TestHybridBoundaryReachesBalancedMeanCount is §8 statistical property 5 /
// Scenario B: a micro region bordering a meso region, with all molecules
// started on the micro side, reaches a balanced mean count on each side
// after T = L²/D, with no systematic drift across the interface. This
// exercises the micro<->meso diffusion propensity fixed in meso/propensity.go
// and region/builder.go.
func TestHybridBoundaryReachesBalancedMeanCount(t *testing.T) {
	const (
		l         = 5e-6
		d         = 1e-9
		nReleased = 10
		nRuns     = 150
	)
	tEnd := l * l / d

	finals := make([]float64, nRuns)
	for i := 0; i < nRuns; i++ {
		cfg := Config{
			RegionSpecs: []region.Spec{
				{Label: "micro", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{l, l, l}),
					NX: 1, NY: 1, NZ: 1, SubSize: 1, IsMicroscopic: true},
				{Label: "meso", Shape: geom.NewBox(geom.Point{l, 0, 0}, geom.Point{2 * l, l, l}),
					NX: 1, NY: 1, NZ: 1, SubSize: 1},
			},
			DiffCoeff: []float64{d},
			BaseSize:  l,
			DistErr:   1e-9,
			MicroDT:   tEnd / 100,
			FinalTime: tEnd,
		}
		sampler := rng.New(int64(3000 + i))
		rz, err := NewRealization(cfg, sampler)
		if err != nil {
			t.Fatal(err)
		}
		micro, _ := rz.Graph.RegionByLabel("micro")
		for j := 0; j < nReleased; j++ {
			rz.Micro.Lists[micro.ID][0].Steady = append(rz.Micro.Lists[micro.ID][0].Steady, geom.Point{X: l / 2, Y: l / 2, Z: l / 2})
		}
		if err := rz.Run(); err != nil {
			t.Fatal(err)
		}
		finals[i] = float64(microCount(rz, micro.ID, 0))
	}

	mean := stat.Mean(finals, nil)
	want := float64(nReleased) / 2
	if math.Abs(mean-want) > 1.5 {
		t.Errorf("expected micro-side mean count near %v after T=L^2/D, got %v", want, mean)
	}
}
