package piano

// Keyboard is the polyphonic engine: a fixed ordered collection of
// (hammer, string) pairs covering NoteCount notes (A0..C5 in the
// reference configuration), plus the convenience single-threaded
// mixer and the multi-threaded block dispatcher.
type Keyboard struct {
	sampleRate      int
	samplesPerBlock int

	strings []*StringSimulator

	pool    *workerPool
	scratch [][]float32
}

// NewKeyboard allocates all NoteCount hammer/string pairs with their
// published per-note (f0, L, S) and uniform hammer/damping
// coefficients, and starts a persistent worker pool of
// clamp(threads, 1, 8) goroutines.
func NewKeyboard(sampleRate int, samplesPerBlock int, threads int) (*Keyboard, error) {
	if sampleRate <= 0 {
		return nil, &InvalidParameterError{Field: "sampleRate", Reason: "must be > 0"}
	}
	if samplesPerBlock <= 0 {
		return nil, &InvalidParameterError{Field: "samplesPerBlock", Reason: "must be > 0"}
	}

	k := &Keyboard{
		sampleRate:      sampleRate,
		samplesPerBlock: samplesPerBlock,
		strings:         make([]*StringSimulator, NoteCount),
	}

	fs := float64(sampleRate)
	for i, spec := range noteTable {
		h := newHammer(fs, hammerMass, hammerExponent, hammerFeltFD, hammerStiffness, hammerContactFrac, hammerWindowM)
		str, err := newStringSimulator(fs, spec.f0, spec.l, stringDensity, spec.s, stringYoung, stringB1Nom, stringB2Nom, h)
		if err != nil {
			return nil, err
		}
		str.active = false
		k.strings[i] = str
	}

	k.pool = newWorkerPool(threads)
	k.scratch = make([][]float32, k.pool.n)
	for i := range k.scratch {
		k.scratch[i] = make([]float32, samplesPerBlock)
	}

	return k, nil
}

// Close releases all workers and joins them.
func (k *Keyboard) Close() {
	k.pool.stopPool()
}

func (k *Keyboard) lookup(noteIndex int) (*StringSimulator, error) {
	if noteIndex < 0 || noteIndex >= NoteCount {
		return nil, &UnknownNoteError{Index: noteIndex}
	}
	return k.strings[noteIndex], nil
}

// Hit excites the addressed note with initial hammer velocity v (m/s).
func (k *Keyboard) Hit(noteIndex int, v float64) error {
	str, err := k.lookup(noteIndex)
	if err != nil {
		return err
	}
	str.Hit(v)
	return nil
}

// Damp applies aggressive damping to the addressed note.
func (k *Keyboard) Damp(noteIndex int) error {
	str, err := k.lookup(noteIndex)
	if err != nil {
		return err
	}
	str.Damp()
	return nil
}

// Undamp restores nominal damping on the addressed note, e.g. when a
// sustain pedal is released without a new hit.
func (k *Keyboard) Undamp(noteIndex int) error {
	str, err := k.lookup(noteIndex)
	if err != nil {
		return err
	}
	str.Undamp()
	return nil
}

// GetNextSample sums one sample from every string and returns
// gain*sum. Single-threaded; the summation order over notes is fixed
// (note-table order) within a run.
func (k *Keyboard) GetNextSample(gain float32) float32 {
	var sum float32
	for _, str := range k.strings {
		sum += str.GetNextSample()
	}
	return gain * sum
}

// GetNextBlock fills out by repeated GetNextSample calls.
func (k *Keyboard) GetNextBlock(out []float32, gain float32) {
	for i := range out {
		out[i] = k.GetNextSample(gain)
	}
}
