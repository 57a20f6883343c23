package piano

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// activityCheckInterval and activityThreshold are the compile-time
// constants governing the activity tracker (see activity.go). They
// are deliberately not constructor parameters.
const (
	activityCheckInterval = 0x4000
	activityThreshold     = 1e-6
)

// StringSimulator is the finite-difference solver for one piano key:
// a stiff, damped string excited by a nonlinear felt hammer, advanced
// one audio sample per call.
type StringSimulator struct {
	h *hammer

	fs, ts float64
	f0     float64
	length float64
	rho    float64
	area   float64
	young  float64

	b1, b2       float64
	b1Nom, b2Nom float64

	mass      float64 // Ms = rho*L
	tension   float64 // Te
	waveSpeed float64 // c
	gyration  float64 // r_g
	epsilon   float64 // stiffness parameter

	gridSize int     // N
	dx       float64 // grid step
	lambda   float64 // Courant number
	mu       float64

	d, r, a1, a2, a3, a4, a5 float64
	// Boundary coefficients are computed for completeness but, like the
	// reference implementation, are never applied: the active boundary
	// condition is the simplified reflective one in GetNextSample.
	bR1, bR2, bR3, bR4, bRF float64
	bL1, bL2, bL3, bL4, bLF float64

	y              [][4]float64 // [gridSize+2][4]
	n0, n1, n2, n3 uint8

	tapLeft, tapRight int

	active       bool
	checkCounter uint64
}

// newStringSimulator constructs the FD grid and hammer geometry for
// one note. fs is the sample rate, f0 the fundamental, l the string
// length, s the cross-sectional area.
func newStringSimulator(fs, f0, l, rho, s, young, b1, b2 float64, h *hammer) (*StringSimulator, error) {
	if f0 <= 0 || f0 > fs/2 {
		return nil, &InvalidParameterError{Field: "f0", Reason: "must satisfy 0 < f0 <= Fs/2"}
	}
	if l <= 0 {
		return nil, &InvalidParameterError{Field: "length", Reason: "must be > 0"}
	}

	str := &StringSimulator{
		h:      h,
		fs:     fs,
		ts:     1.0 / fs,
		f0:     f0,
		length: l,
		rho:    rho,
		area:   s,
		young:  young,
		b1Nom:  b1,
		b2Nom:  b2,
		b1:     b1,
		b2:     b2,
	}

	str.mass = rho * l
	str.tension = rho * l * l * 4 * f0 * f0
	str.waveSpeed = math.Sqrt(str.tension / rho)
	str.gyration = s / 2
	str.epsilon = str.gyration * str.gyration * young * s / (str.tension * l * l)

	gamma := fs / (2 * f0)
	inner := -1 + math.Sqrt(1+16*str.epsilon*gamma*gamma)
	n := int(math.Floor(math.Sqrt(inner / (8 * str.epsilon))))
	if n < 5 {
		return nil, &InvalidParameterError{Field: "f0", Reason: "grid size N < 5, string is not representable at this sample rate"}
	}
	str.gridSize = n
	str.dx = l / float64(n)
	str.waveSpeedCheck()

	str.lambda = str.waveSpeed * str.ts / str.dx
	str.mu = str.epsilon * str.epsilon / (str.waveSpeed * str.waveSpeed * str.dx * str.dx)

	str.y = make([][4]float64, n+2)
	str.n0, str.n1, str.n2, str.n3 = 0, 1, 2, 3

	str.setupHammerGeometry()
	str.setupSoundTap()
	str.computeFDCoefficients()

	str.active = true
	return str, nil
}

// waveSpeedCheck is a no-op placeholder kept for symmetry with the
// validation points the constructor performs; reserved for an
// explicit CFL check should a future note table allow Fs/f0 ratios
// this scheme was not validated against.
func (s *StringSimulator) waveSpeedCheck() {}

func (s *StringSimulator) setupHammerGeometry() {
	h := s.h
	h.contactIndex = int(math.Round(h.contact * s.length / s.dx))
	gs := int(math.Ceil(h.windowM * float64(s.gridSize) / s.length))
	if gs < 1 {
		gs = 1
	}
	h.windowLen = gs
	h.window = hannWindow(gs)

	mask := make([]float64, s.gridSize)
	start := int(math.Floor(float64(h.contactIndex)-float64(gs)/2)) + 1
	for k := 0; k < gs; k++ {
		idx := start + k
		if idx >= 0 && idx < len(mask) {
			mask[idx] = h.window[k]
		}
	}
	h.mask = mask
}

func (s *StringSimulator) setupSoundTap() {
	n := s.gridSize
	nTap := n - 1
	if nTap > 13 {
		nTap = 13
	}
	if nTap%2 == 0 {
		nTap--
	}
	if nTap < 1 {
		nTap = 1
	}
	soundIndex := n - s.h.contactIndex
	s.tapLeft = soundIndex - (nTap-1)/2
	s.tapRight = soundIndex + (nTap-1)/2
	if s.tapLeft < 0 {
		s.tapLeft = 0
	}
	if s.tapRight > n+1 {
		s.tapRight = n + 1
	}
}

// computeFDCoefficients derives the interior-stencil and boundary
// coefficients from the current damping pair; called at construction
// and whenever Damp/Undamp changes (b1, b2).
func (s *StringSimulator) computeFDCoefficients() {
	n := float64(s.gridSize)
	r := s.waveSpeed * s.ts / s.dx
	s.r = r

	d := 1 + s.b1*s.dx + 2*s.b2/s.ts
	s.d = d

	s.a1 = (2 - 2*r*r + s.b2/s.ts - 6*s.epsilon*n*n*r*r) / d
	s.a2 = (-1 + s.b1*s.ts + 2*s.b2/s.ts) / d
	s.a3 = r * r * (1 + 4*s.epsilon*n*n) / d
	s.a4 = (s.b2/s.ts - s.epsilon*n*n*r*r) / d
	s.a5 = (-s.b2 / s.ts) / d

	// Richer boundary coefficients, computed but not applied to the
	// per-sample update (see the comment on the StringSimulator
	// boundary-coefficient fields).
	const zetaB = 1e3
	const zetaL = 1e20
	s.bR1 = (2 - 2*r*r - (6*s.epsilon*n*n+2*zetaB*r)*r) / d
	s.bR2 = (-1 + s.b1*s.ts + 2*s.b2/s.ts + 2*zetaB*r) / d
	s.bR3 = (2*r*r + 8*s.epsilon*n*n*r*r) / d
	s.bR4 = (-s.epsilon * n * n * r * r) / d
	s.bRF = zetaL
	s.bL1 = s.bR1
	s.bL2 = s.bR2
	s.bL3 = s.bR3
	s.bL4 = s.bR4
	s.bLF = zetaL
}

// Hit excites the string with initial hammer velocity v (m/s). The
// string is unconditionally marked active and damping restored to
// nominal; the string's own displacement is not reset, so repeated
// hits accumulate onto whatever is still ringing.
func (s *StringSimulator) Hit(v float64) {
	s.active = true
	s.checkCounter = 0
	s.Undamp()

	s.n3 = (s.n3 - 1) & 3
	s.n2 = (s.n2 - 1) & 3
	s.n1 = (s.n1 - 1) & 3
	s.n0 = (s.n0 - 1) & 3

	h := s.h
	h.eta[s.n3] = 0
	h.eta[s.n2] = 0
	h.eta[s.n1] = 0
	h.eta[s.n0] = v * s.ts
	h.fh[s.n0] = h.contactForce(h.eta[s.n0] - s.y[h.contactIndex][s.n0])
}

// Damp sets aggressive damping coefficients and recomputes the FD
// stencil; used on key-off when the sustain pedal is not held.
func (s *StringSimulator) Damp() {
	s.b1 = dampedB1
	s.b2 = dampedB2
	s.computeFDCoefficients()
}

// Undamp restores the nominal damping pair.
func (s *StringSimulator) Undamp() {
	s.b1 = s.b1Nom
	s.b2 = s.b2Nom
	s.computeFDCoefficients()
}

// GetNextSample advances the string by one audio sample and returns
// it. Returns exactly 0 without doing any stencil work when the
// activity tracker has judged the string silent.
func (s *StringSimulator) GetNextSample() float32 {
	s.checkCounter++
	if s.checkCounter > activityCheckInterval {
		s.checkCounter = 0
		s.checkActivity()
	}
	if !s.active {
		return 0
	}

	s.n3 = (s.n3 + 1) & 3
	s.n2 = (s.n2 + 1) & 3
	s.n1 = (s.n1 + 1) & 3
	s.n0 = (s.n0 + 1) & 3

	n := s.gridSize
	h := s.h
	y := s.y
	n0, n1, n2, n3 := s.n0, s.n1, s.n2, s.n3

	scale := s.ts * s.ts * float64(n) / s.mass
	for i := 2; i <= n-4; i++ {
		y[i][n0] = s.a1*y[i][n1] + s.a2*y[i][n2] +
			s.a3*(y[i+1][n1]+y[i-1][n1]) +
			s.a4*(y[i+2][n1]+y[i-2][n1]) +
			s.a5*(y[i+1][n2]+y[i-1][n2]+y[i][n3]) +
			scale*h.fh[n1]*h.mask[i]
	}

	y[0][n0] = -y[2][n0]
	y[n+1][n0] = -y[n-1][n0]

	h.eta[n0] = h.d1*h.eta[n1] + h.d2*h.eta[n2] + h.dF*h.fh[n1]
	h.fh[n0] = h.contactForce(h.eta[n0] - y[h.contactIndex][n0])

	var sum float64
	for i := s.tapLeft; i <= s.tapRight; i++ {
		sum += y[i][n0]
	}
	out := sum / float64(s.tapRight-s.tapLeft+1)
	return float32(dspcore.FlushDenormals(out))
}
