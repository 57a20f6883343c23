package piano

import "math"

// hammer is the felt-tipped striker in contact with one string. Its
// physical parameters are fixed at construction; only the transient
// displacement/force history (eta, fh) and the string-facing contact
// geometry, filled in once by the owning string, change afterward.
type hammer struct {
	ts float64

	mass      float64
	exponent  float64
	feltFD    float64
	stiffness float64
	contact   float64 // normalized contact position a in (0,1]
	windowM   float64 // contact-window length in meters

	d1, d2, dF float64

	// Filled in by (*StringSimulator).setupHammerGeometry once the grid
	// is sized.
	contactIndex int       // Xs_contact
	windowLen    int       // g_s
	window       []float64 // pre-sampled Hann window, length windowLen
	mask         []float64 // zero-padded, length of the string grid

	eta [4]float64
	fh  [4]float64
}

func newHammer(fs float64, mass, exponent, feltFD, stiffness, contact, windowM float64) *hammer {
	ts := 1.0 / fs
	half := feltFD * ts / (2 * mass)
	denom := 1 + half
	h := &hammer{
		ts:        ts,
		mass:      mass,
		exponent:  exponent,
		feltFD:    feltFD,
		stiffness: stiffness,
		contact:   contact,
		windowM:   windowM,
	}
	h.d1 = 2 / denom
	h.d2 = (-1 + half) / denom
	h.dF = (-ts * ts / mass) / denom
	return h
}

// hannWindow returns a raised-cosine window of length n, unnormalized.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for k := 0; k < n; k++ {
		w[k] = 0.5 * (1 - math.Cos(2*math.Pi*float64(k)/float64(n-1)))
	}
	return w
}

// contactForce evaluates the nonlinear felt spring law given the
// current hammer/string compression; returns 0 when the hammer is not
// pressing into the string.
func (h *hammer) contactForce(compression float64) float64 {
	if compression <= 0 {
		return 0
	}
	return h.stiffness * math.Pow(compression, h.exponent)
}
