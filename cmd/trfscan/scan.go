package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/helixprop/internal/monitoring"
	"github.com/banshee-data/helixprop/internal/timeutil"
	"github.com/banshee-data/helixprop/internal/trajectory"
	"github.com/banshee-data/helixprop/internal/trf"
	"github.com/banshee-data/helixprop/internal/units"
)

// Toy detector geometry in cm.
const (
	barrelHalfLength = 60.0
	diskZ            = 70.0
	diskRMin         = 4.0
	diskRMax         = 55.0
)

var barrelRadii = []float64{4, 8, 12, 25, 40, 55}

// Detector is an ordered list of barrel elements closed by one endcap disk
// at each end.
type Detector struct {
	Beam     trf.Surface
	Barrel   []trajectory.Element
	Forward  trajectory.Element
	Backward trajectory.Element
}

// ToyDetector returns six barrel layers, a single stave plane between the
// fourth and fifth layers, and two endcap disks.
func ToyDetector() Detector {
	d := Detector{Beam: trf.NewDCA(0, 0, 0, 0)}
	for i, r := range barrelRadii {
		d.Barrel = append(d.Barrel, trajectory.Element{
			Surface:    trf.NewBoundedCylinder(r, -barrelHalfLength, barrelHalfLength),
			DetectorID: fmt.Sprintf("barrel%d", i+1),
		})
		if r == 25 {
			d.Barrel = append(d.Barrel, trajectory.Element{
				Surface:    trf.NewBoundedXYPlane(0.3, 30, -8, 8, -barrelHalfLength, barrelHalfLength),
				DetectorID: "stave",
			})
		}
	}
	d.Forward = trajectory.Element{Surface: trf.NewDisk(diskZ, diskRMin, diskRMax), DetectorID: "disk+"}
	d.Backward = trajectory.Element{Surface: trf.NewDisk(-diskZ, diskRMin, diskRMax), DetectorID: "disk-"}
	return d
}

// Elements returns the elements a particle with the given tanλ may cross,
// in order.
func (d Detector) Elements(tanl float64) []trajectory.Element {
	out := append([]trajectory.Element(nil), d.Barrel...)
	if tanl >= 0 {
		return append(out, d.Forward)
	}
	return append(out, d.Backward)
}

// Particle is a generated pion leaving the beam line.
type Particle struct {
	ID      int
	PDG     int
	Lineage trajectory.Lineage
	Start   trf.VTrack
}

var parents = []int{1, 4, -5, 23, 24, -24, 15, 443}

// Generator draws particles uniformly in azimuth, tanλ and pT.
type Generator struct {
	phi, tanl, pt distuv.Uniform
	charge        distuv.Bernoulli
	beam          trf.Surface
	next          int
}

// NewGenerator returns a reproducible generator for seed.
func NewGenerator(seed uint64, ptMin, ptMax, tanLMax float64) *Generator {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Generator{
		phi:    distuv.Uniform{Min: 0, Max: units.TwoPi, Src: src},
		tanl:   distuv.Uniform{Min: -tanLMax, Max: tanLMax, Src: src},
		pt:     distuv.Uniform{Min: ptMin, Max: ptMax, Src: src},
		charge: distuv.Bernoulli{P: 0.5, Src: src},
		beam:   trf.NewDCA(0, 0, 0, 0),
	}
}

// Next returns the next particle, starting on the beam line at the origin.
func (g *Generator) Next() Particle {
	q := 2*g.charge.Rand() - 1
	trk := trf.NewVTrack(g.beam, trf.Vector{0, 0, g.phi.Rand(), g.tanl.Rand(), q / g.pt.Rand()})
	trk.SetForward()
	p := Particle{
		ID:      g.next,
		PDG:     int(q) * 211,
		Lineage: trajectory.Lineage(0).With(parents[g.next%len(parents)]),
		Start:   trk,
	}
	g.next++
	return p
}

// Summary aggregates a scan.
type Summary struct {
	Particles    int
	States       int
	Failed       int
	Skipped      int // round trips with no crossing or out of range
	MaxDeviation float64
	Elapsed      time.Duration
}

// Scanner walks particles through a detector.
type Scanner struct {
	Registry trf.Propagator
	Detector Detector
	Window   trajectory.Window
	Units    string
	Clock    timeutil.Clock // nil means the system clock
}

// startCovariance is the beam-line error assumed for fit predictions.
func startCovariance(qpt float64) trf.Covariance {
	return trf.DiagonalCovariance([trf.Dim]float64{1e-4, 1e-2, 1e-6, 1e-6, 1e-4 * qpt * qpt})
}

// Run scans n particles from gen.
func (s *Scanner) Run(gen *Generator, n int) Summary {
	clock := s.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()
	var sum Summary
	for i := 0; i < n; i++ {
		p := gen.Next()
		out, err := s.scanParticle(p)
		sum.Particles++
		sum.States += out.states
		sum.Skipped += out.skipped
		if err != nil {
			monitoring.Logf("particle %d (pdg %d): %v", p.ID, p.PDG, err)
			sum.Failed++
			continue
		}
		sum.MaxDeviation = math.Max(sum.MaxDeviation, out.dev)
	}
	sum.Elapsed = clock.Since(start)
	return sum
}

type particleScan struct {
	dev     float64
	states  int
	skipped int
}

// returnDirection reverses the direction a state was reached in.
func returnDirection(s float64) trf.Direction {
	if s < 0 {
		return trf.Forward
	}
	return trf.Backward
}

// roundTrip sends st back to the beam line and returns the largest
// component of its difference from where the helix meets the beam on the
// turn it lands on. The beam line is vertical and the particle starts on
// it, so every turn comes back with the same r, φ and slopes; only z moves
// on by tanλ per unit transverse length.
func (s *Scanner) roundTrip(start trf.VTrack, st trajectory.TruthState) (float64, error) {
	res, err := s.Registry.Propagate(st.Track, s.Detector.Beam, returnDirection(st.S), false)
	if err != nil {
		return 0, err
	}
	want := start.Vector()
	tanl := want[trf.ITlm]
	want[trf.IZ] += tanl * (st.S + res.PathLength) / math.Sqrt(1+tanl*tanl)

	var dev float64
	for _, x := range s.Detector.Beam.VecDiff(res.Track.Vector(), want) {
		dev = math.Max(dev, math.Abs(x))
	}
	return dev, nil
}

func (s *Scanner) scanParticle(p Particle) (particleScan, error) {
	var out particleScan
	b := &trajectory.Builder{Prop: s.Registry, Direction: trf.Forward, Window: s.Window}
	elems := s.Detector.Elements(p.Start.Vector()[trf.ITlm])

	truth, err := b.BuildTruth(p.ID, p.PDG, p.Start, "beam", elems)
	if err != nil {
		return out, err
	}
	truth.Lineage = p.Lineage
	out.states = truth.Len()
	if err := truth.Validate(); err != nil {
		return out, err
	}

	states := truth.States()
	for _, st := range states[1:] {
		dev, err := s.roundTrip(p.Start, st)
		switch {
		case errors.Is(err, trf.ErrNoCrossing), errors.Is(err, trf.ErrOutOfRange):
			monitoring.Logf("particle %d: no return from %s at s=%.2f: %v", p.ID, st.DetectorID, st.S, err)
			out.skipped++
			continue
		case err != nil:
			return out, fmt.Errorf("return from %s: %w", st.DetectorID, err)
		}
		out.dev = math.Max(out.dev, dev)
	}

	start := trf.NewETrack(p.Start.Surface(), p.Start.Vector(), startCovariance(p.Start.Vector()[trf.IQpt]))
	start.SetForward()
	fit, err := b.BuildFit(start, elems)
	if err != nil {
		return out, err
	}

	last := states[len(states)-1]
	p4, err := truth.Momentum(last.S)
	if err != nil {
		return out, err
	}
	var misses int
	for _, st := range fit.States() {
		if st.Miss != nil {
			misses++
		}
	}
	monitoring.Logf("particle %d pdg=%d parents=%s: %d states, last %s at s=%.2f %s, pT=%.3f GeV, E=%.3f GeV, %d fit states (%d outside extent)",
		p.ID, p.PDG, truth.Lineage, len(states), last.DetectorID,
		units.ConvertLength(last.S, s.Units), s.Units, p4.Pt(), p4.E(), fit.Len(), misses)
	return out, nil
}
