package det01

import (
	"cmp"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	fineStructure = 1 / 137.035999
	// muon energy loss in polystyrene, per unit length at unit density
	moyalMPV   = 1.95 * MeV / cm
	moyalWidth = 0.0867 * MeV / cm
	// Cherenkov photons are counted between these wavelengths
	cherenkovLambdaMin = 300 * nm
	cherenkovLambdaMax = 600 * nm
	deltaStepLength    = 1 * mm
)

// EventStats counts what the engine did during one event.
type EventStats struct {
	Steps       int
	Secondaries int
	Photons     int
	Killed      int
	Lost        int
}

// Engine is a parametrised stand-in for full particle transport. It moves
// the primary muon in a straight line through the stack, samples the
// energy loss of each step and turns it into optical photons delivered to
// the photocathode of the slab. Every step is handed to the sensitive
// detectors through the SDManager, like a transport kernel would.
type Engine struct {
	det              *Detector
	sdm              *SDManager
	source           *CosmicMuonSource
	conds            Conditions
	action           *EventAction
	seed             uint64
	maxStep          float64
	deltaProb        float64
	collectionEff    float64
	reflectionSpread float64
	cherenkov        bool
}

func NewEngine(det *Detector, sdm *SDManager, source *CosmicMuonSource, conds Conditions, config Configuration) *Engine {
	return &Engine{
		det:              det,
		sdm:              sdm,
		source:           source,
		conds:            conds,
		seed:             config.Seed,
		maxStep:          config.MaxStep,
		deltaProb:        config.DeltaProb,
		collectionEff:    config.CollectionEff,
		reflectionSpread: config.ReflectionSpread,
		cherenkov:        config.Cherenkov,
	}
}

// SetEventAction installs the action whose begin hook runs after the
// primaries are generated.
func (e *Engine) SetEventAction(action *EventAction) {
	e.action = action
}

// EventSeed derives the seed of one event from the run seed, so that an
// event is reproduced whatever worker processes it.
func EventSeed(seed uint64, eventID int) uint64 {
	// splitmix64 finalizer
	z := seed + uint64(eventID+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

type crossing struct {
	tIn  float64
	tOut float64
}

type eventState struct {
	rng     *rand.Rand
	nextID  int
	stats   EventStats
	photons bool
}

func (e *Engine) ProcessEvent(eventID int) (*Event, EventStats) {
	rng := rand.New(rand.NewSource(EventSeed(e.seed, eventID)))
	event := &Event{ID: eventID}
	e.source.GeneratePrimaries(event, rng)
	if e.action != nil {
		e.action.BeginOfEventAction(event)
	}

	event.HCE = e.sdm.PrepareNewEvent()
	state := &eventState{
		rng:     rng,
		nextID:  PrimaryTrackID + 1,
		photons: e.sdm.Detector(Photocathode) != nil,
	}
	e.transportPrimary(event.PrimaryVertex(0), state)
	e.sdm.TerminateEvent(event.HCE)
	return event, state.stats
}

func (e *Engine) crossings(origin, dir r3.Vec) []crossing {
	var out []crossing
	for _, slab := range e.det.Slabs {
		tIn, tOut, ok := slab.Intersect(origin, dir)
		if ok && tOut > tIn {
			out = append(out, crossing{tIn: tIn, tOut: tOut})
		}
	}
	slices.SortFunc(out, func(a, b crossing) int { return cmp.Compare(a.tIn, b.tIn) })
	return out
}

func (e *Engine) transportPrimary(vertex *PrimaryVertex, state *eventState) {
	primary := vertex.Primaries[0]
	track := &Track{ID: PrimaryTrackID, Particle: primary.Particle}
	dir := r3.Unit(primary.Direction)
	energy := primary.KineticEnergy
	mat := e.det.Material(Scintillator)

	for _, c := range e.crossings(vertex.Position, dir) {
		length := c.tOut - c.tIn
		nSteps := int(math.Ceil(length / e.maxStep))
		stepLen := length / float64(nSteps)

		for k := 0; k < nSteps; k++ {
			if track.Status == StopAndKill {
				return
			}
			beta := muonBeta(energy)
			s0 := c.tIn + float64(k)*stepLen
			s1 := s0 + stepLen
			// the step volume is resolved at its midpoint, boundary points
			// may round to either side
			mid := r3.Add(vertex.Position, r3.Scale((s0+s1)/2, dir))
			touch := e.touchableAt(mid)
			pre := StepPoint{
				Position:      r3.Add(vertex.Position, r3.Scale(s0, dir)),
				GlobalTime:    vertex.Time + s0/(beta*cLight),
				KineticEnergy: energy,
				Touchable:     touch,
			}

			edep := e.sampleEnergyLoss(stepLen, mat, state.rng)
			if edep >= energy {
				edep = energy
				track.Kill()
			}
			energy -= edep

			postPos := r3.Add(vertex.Position, r3.Scale(s1, dir))
			post := StepPoint{
				Position:      postPos,
				GlobalTime:    vertex.Time + s1/(beta*cLight),
				KineticEnergy: energy,
				Touchable:     e.touchableAt(postPos),
			}

			if state.rng.Float64() < e.deltaProb && touch.Volume == Scintillator {
				deltaE := edep * (0.1 + 0.4*state.rng.Float64())
				edep -= deltaE
				origin := pre
				origin.Position = mid
				e.emitDelta(touch.CopyNumber, origin, deltaE, dir, state)
			}

			step := &Step{
				Track:              track,
				PreStepPoint:       pre,
				PostStepPoint:      post,
				TotalEnergyDeposit: edep,
				Length:             stepLen,
			}
			e.sdm.Dispatch(step)
			state.stats.Steps++

			if state.photons && touch.Volume == Scintillator {
				e.emitPhotons(touch.CopyNumber, mid, pre.GlobalTime, edep, stepLen, beta, state)
			}
		}
	}
}

func (e *Engine) touchableAt(p r3.Vec) Touchable {
	kind, copyNo := e.det.Locate(p)
	return Touchable{Volume: kind, CopyNumber: copyNo}
}

// emitDelta produces a knock-on electron that deposits all its energy in a
// single short step starting at p, inside the given slab.
func (e *Engine) emitDelta(slab int, p StepPoint, energy float64, dir r3.Vec, state *eventState) {
	track := &Track{ID: state.nextID, ParentID: PrimaryTrackID, Particle: Electron}
	state.nextID++
	state.stats.Secondaries++

	end := p
	end.Position = r3.Add(p.Position, r3.Scale(deltaStepLength, dir))
	end.KineticEnergy = 0
	if !e.det.Slabs[slab].Contains(end.Position) {
		end.Position = p.Position
	}
	end.Touchable = e.touchableAt(end.Position)
	start := p
	start.KineticEnergy = energy
	start.Touchable = e.touchableAt(r3.Scale(0.5, r3.Add(start.Position, end.Position)))

	step := &Step{
		Track:              track,
		PreStepPoint:       start,
		PostStepPoint:      end,
		TotalEnergyDeposit: energy,
		Length:             r3.Norm(r3.Sub(end.Position, start.Position)),
	}
	e.sdm.Dispatch(step)
	track.Kill()
	state.stats.Steps++

	if state.photons {
		e.emitPhotons(slab, p.Position, p.GlobalTime, energy, 0, 0, state)
	}
}

// sampleEnergyLoss draws a Moyal distributed energy loss for a step of the
// given length: with lambda = (dE - mpv)/xi, exp(-lambda) is chi-squared
// with one degree of freedom.
func (e *Engine) sampleEnergyLoss(length float64, mat *Material, rng *rand.Rand) float64 {
	densityScale := mat.Density / MaterialHNDS2.Density
	mpv := moyalMPV * length * densityScale
	xi := moyalWidth * length * densityScale
	lambda := -math.Log(distuv.ChiSquared{K: 1, Src: rng}.Rand())
	return math.Max(0, mpv+xi*lambda)
}

// emitPhotons delivers the detected optical photons of one scintillator
// step to the photocathode of the slab. Only photons that end up detected
// are generated; the detection chain is folded into the mean count.
func (e *Engine) emitPhotons(slab int, at r3.Vec, t0, edep, stepLen, beta float64, state *eventState) {
	mat := e.det.Material(Scintillator)
	cond := e.conds.Get(slab)
	cathode := e.det.Cathodes[slab]
	dist := r3.Norm(r3.Sub(cathode.Center, at))

	produced := mat.ScintYield * edep * cond.LightYieldScale
	if e.cherenkov && stepLen > 0 {
		produced += cherenkovYield(beta, mat.RIndex) * stepLen
	}
	mean := produced * e.collectionEff * cond.QuantumEfficiency * math.Exp(-dist/mat.AbsLength)
	if mean <= 0 {
		return
	}

	n := detectedPhotons(mean, mat.ResolutionScale, state.rng)
	rise := distuv.Exponential{Rate: 1 / mat.ScintRiseTime, Src: state.rng}
	decay := distuv.Exponential{Rate: 1 / mat.ScintTimeConstant, Src: state.rng}
	transit := dist * mat.RIndex / cLight
	assembly := e.det.AssemblyTransit(slab)

	for i := 0; i < n; i++ {
		arrival := t0 + rise.Rand() + decay.Rand() +
			transit*(1+e.reflectionSpread*state.rng.ExpFloat64()) + assembly + cond.TimeOffset

		// uniform over the photocathode face
		r := cathode.Radius * math.Sqrt(state.rng.Float64())
		phi := 2 * math.Pi * state.rng.Float64()
		pos := r3.Vec{
			X: cathode.Center.X,
			Y: cathode.Center.Y + r*math.Cos(phi),
			Z: cathode.Center.Z + r*math.Sin(phi),
		}
		touch := e.touchableAt(pos)
		if touch.Volume != Photocathode {
			state.stats.Lost++
			continue
		}

		track := &Track{ID: state.nextID, ParentID: PrimaryTrackID, Particle: OpticalPhoton}
		state.nextID++
		point := StepPoint{Position: pos, GlobalTime: arrival, KineticEnergy: 3 * eV, Touchable: touch}
		step := &Step{Track: track, PreStepPoint: point, PostStepPoint: point}
		e.sdm.Dispatch(step)
		state.stats.Photons++
		if track.Status == StopAndKill {
			state.stats.Killed++
		}
	}
}

// detectedPhotons draws the photon count for a mean: Poisson for small
// means, above 10 a Gaussian of width scale*sqrt(mean).
func detectedPhotons(mean, scale float64, rng *rand.Rand) int {
	if mean <= 10 {
		return int(distuv.Poisson{Lambda: mean, Src: rng}.Rand())
	}
	n := distuv.Normal{Mu: mean, Sigma: scale * math.Sqrt(mean), Src: rng}.Rand()
	return int(math.Max(0, math.Floor(n+0.5)))
}

// cherenkovYield is the Frank-Tamm photon count per unit length for a unit
// charge in the counted wavelength band.
func cherenkovYield(beta, rindex float64) float64 {
	bn := beta * rindex
	if bn <= 1 {
		return 0
	}
	band := 1/cherenkovLambdaMin - 1/cherenkovLambdaMax
	return 2 * math.Pi * fineStructure * band * (1 - 1/(bn*bn))
}

func muonBeta(kinetic float64) float64 {
	gamma := 1 + kinetic/muonMass
	return math.Sqrt(1 - 1/(gamma*gamma))
}
