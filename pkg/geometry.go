package det01

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type VolumeKind int

const (
	OutOfWorld VolumeKind = iota
	World
	Scintillator
	Grease
	PMTWindow
	Photocathode
)

func (v VolumeKind) String() string {
	switch v {
	case World:
		return "World"
	case Scintillator:
		return "Scintillator"
	case Grease:
		return "Grease"
	case PMTWindow:
		return "PMTWindow"
	case Photocathode:
		return "Photocathode"
	default:
		return "OutOfWorld"
	}
}

// Material carries the bulk and optical constants used by the engine.
// Optical properties are flat over the 2-4 eV photon energy range.
type Material struct {
	Name              string
	Density           float64
	RIndex            float64
	AbsLength         float64
	ScintYield        float64 // photons per MeV
	ScintTimeConstant float64
	ScintRiseTime     float64
	ResolutionScale   float64
}

var (
	MaterialAir = &Material{
		Name:      "G4_AIR",
		Density:   0.00120479 * gPerCm3,
		RIndex:    1.0,
		AbsLength: math.Inf(1),
	}
	// Polystyrene based HND-S2, peak emission around 425 nm.
	MaterialHNDS2 = &Material{
		Name:              "HND-S2",
		Density:           1.05 * gPerCm3,
		RIndex:            1.59,
		AbsLength:         380 * cm,
		ScintYield:        10000 / MeV,
		ScintTimeConstant: 2.6 * ns,
		ScintRiseTime:     0.7 * ns,
		ResolutionScale:   1.0,
	}
	MaterialPyrex = &Material{
		Name:      "G4_Pyrex_Glass",
		Density:   2.23 * gPerCm3,
		RIndex:    1.50,
		AbsLength: 100 * cm,
	}
	MaterialGrease = &Material{
		Name:      "OpticalGrease",
		Density:   1.06 * gPerCm3,
		RIndex:    1.45,
		AbsLength: 100 * cm,
	}
	// Bialkali photocathode, modelled as an absorber.
	MaterialBialkali = &Material{
		Name:      "Bialkali",
		Density:   2.0 * gPerCm3,
		RIndex:    2.0,
		AbsLength: 1 * nm,
	}
)

// Box is an axis aligned box.
type Box struct {
	Center r3.Vec
	Half   r3.Vec
}

func (b Box) Min() r3.Vec { return r3.Sub(b.Center, b.Half) }
func (b Box) Max() r3.Vec { return r3.Add(b.Center, b.Half) }

func (b Box) Contains(p r3.Vec) bool {
	lo, hi := b.Min(), b.Max()
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}

// Intersect returns the parametric entry and exit distances of the line
// o + t*d through the box. ok is false when the line misses the box or the
// box lies entirely behind the origin.
func (b Box) Intersect(o, d r3.Vec) (tIn, tOut float64, ok bool) {
	lo, hi := b.Min(), b.Max()
	tIn, tOut = math.Inf(-1), math.Inf(1)

	axes := [3][4]float64{
		{o.X, d.X, lo.X, hi.X},
		{o.Y, d.Y, lo.Y, hi.Y},
		{o.Z, d.Z, lo.Z, hi.Z},
	}
	for _, a := range axes {
		orig, dir, min, max := a[0], a[1], a[2], a[3]
		if math.Abs(dir) < 1e-12 {
			if orig < min || orig > max {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / dir
		t1 := (min - orig) * inv
		t2 := (max - orig) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tIn {
			tIn = t1
		}
		if t2 < tOut {
			tOut = t2
		}
	}
	if tOut < 0 || tIn > tOut {
		return 0, 0, false
	}
	if tIn < 0 {
		tIn = 0
	}
	return tIn, tOut, true
}

// Tube is a thin cylinder whose axis is parallel to X, as the PMT assembly
// parts are after their 90 degree rotation around Y.
type Tube struct {
	Center    r3.Vec
	Radius    float64
	HalfThick float64
}

func (t Tube) Contains(p r3.Vec) bool {
	if math.Abs(p.X-t.Center.X) > t.HalfThick {
		return false
	}
	dy := p.Y - t.Center.Y
	dz := p.Z - t.Center.Z
	return dy*dy+dz*dz <= t.Radius*t.Radius
}

const (
	worldSize    = 2.0 * m
	scinX        = 120.0 * mm
	scinY        = 150.0 * mm
	scinZ        = 150.0 * mm
	stackGap     = 10.0 * mm
	pmtRadius    = 51.0 * mm / 2
	greaseThick  = 0.1 * mm
	windowThick  = 2.0 * mm
	cathodeRad   = 23.0 * mm
	cathodeThick = 0.1 * mm
)

// Detector is the static geometry of one application version: a stack of
// scintillator slabs along Y, each read out by a PMT on its +X face.
type Detector struct {
	NDetectors int
	World      Box
	Slabs      []Box
	Greases    []Tube
	Windows    []Tube
	Cathodes   []Tube
}

func NewDetector(nDetectors int) *Detector {
	d := &Detector{
		NDetectors: nDetectors,
		World: Box{
			Half: r3.Vec{X: worldSize / 2, Y: worldSize / 2, Z: worldSize / 2},
		},
		Slabs:    make([]Box, nDetectors),
		Greases:  make([]Tube, nDetectors),
		Windows:  make([]Tube, nDetectors),
		Cathodes: make([]Tube, nDetectors),
	}

	stackHeight := float64(nDetectors)*scinY + float64(nDetectors-1)*stackGap
	startY := -stackHeight/2 + scinY/2
	pmtAxis := scinX / 2

	for i := 0; i < nDetectors; i++ {
		posY := startY + float64(i)*(scinY+stackGap)
		d.Slabs[i] = Box{
			Center: r3.Vec{Y: posY},
			Half:   r3.Vec{X: scinX / 2, Y: scinY / 2, Z: scinZ / 2},
		}
		d.Greases[i] = Tube{
			Center:    r3.Vec{X: pmtAxis + greaseThick/2, Y: posY},
			Radius:    pmtRadius,
			HalfThick: greaseThick / 2,
		}
		d.Windows[i] = Tube{
			Center:    r3.Vec{X: pmtAxis + greaseThick + windowThick/2, Y: posY},
			Radius:    pmtRadius,
			HalfThick: windowThick / 2,
		}
		d.Cathodes[i] = Tube{
			Center:    r3.Vec{X: pmtAxis + greaseThick + windowThick + cathodeThick/2, Y: posY},
			Radius:    cathodeRad,
			HalfThick: cathodeThick / 2,
		}
	}
	return d
}

// Material returns the material a volume kind is made of.
func (d *Detector) Material(kind VolumeKind) *Material {
	switch kind {
	case Scintillator:
		return MaterialHNDS2
	case Grease:
		return MaterialGrease
	case PMTWindow:
		return MaterialPyrex
	case Photocathode:
		return MaterialBialkali
	default:
		return MaterialAir
	}
}

// Locate returns the volume containing p and its copy number. Copy numbers
// are the slab index for every per-slab placement and 0 for the world.
func (d *Detector) Locate(p r3.Vec) (VolumeKind, int) {
	if !d.World.Contains(p) {
		return OutOfWorld, -1
	}
	for i := 0; i < d.NDetectors; i++ {
		switch {
		case d.Slabs[i].Contains(p):
			return Scintillator, i
		case d.Cathodes[i].Contains(p):
			return Photocathode, i
		case d.Windows[i].Contains(p):
			return PMTWindow, i
		case d.Greases[i].Contains(p):
			return Grease, i
		}
	}
	return World, 0
}

// StackTop is the Y coordinate of the upper face of the top slab.
func (d *Detector) StackTop() float64 {
	top := d.Slabs[d.NDetectors-1]
	return top.Center.Y + top.Half.Y
}

// AssemblyTransit is the time an optical photon spends crossing the grease
// and the PMT window of a slab, down to the middle of the photocathode.
func (d *Detector) AssemblyTransit(slab int) float64 {
	path := 2*d.Greases[slab].HalfThick*d.Material(Grease).RIndex +
		2*d.Windows[slab].HalfThick*d.Material(PMTWindow).RIndex +
		d.Cathodes[slab].HalfThick*d.Material(Photocathode).RIndex
	return path / cLight
}
