package piano

// NoteCount is the number of (hammer, string) slots the keyboard
// allocates: every chromatic note from A0 through C5 inclusive.
//
// The reference note table below is transcribed directly from the
// constructor calls in the original engine's init_hammers/init_strings
// (A0 through C5, 52 entries — not 51: the A0..C5 span covers 51
// semitones, so it spans 52 notes inclusive). The literal f0 values
// are kept rather than recomputed from equal temperament so the
// reference tuning matches bit-for-bit.
const NoteCount = 52

// MIDINoteOffset converts a MIDI note number to a keyboard note index:
// note_index = midi_note - MIDINoteOffset.
const MIDINoteOffset = 21

// Uniform hammer parameters shared by every note.
const (
	hammerMass        = 4.9e-03
	hammerExponent    = 2.3
	hammerFeltFD      = 1e-04
	hammerStiffness   = 4e08
	hammerContactFrac = 0.12
	hammerWindowM     = 0.05
)

// Nominal string parameters shared by every note.
const (
	stringDensity = 0.0182
	stringYoung   = 9e7
	stringB1Nom   = 3e-3
	stringB2Nom   = 6.25e-9
)

// Damped coefficients applied by (*StringSimulator).Damp.
const (
	dampedB1 = 0.2
	dampedB2 = 6.25e-6
)

type noteSpec struct {
	name string
	f0   float64
	l    float64
	s    float64
}

// noteTable holds the per-note (name, f0, L, S) tuples in keyboard
// order, index 0 = A0, index NoteCount-1 = C5.
var noteTable = []noteSpec{
	{"A0", 27.50, 1.92, 0.001}, {"A#0", 29.14, 1.92, 0.001}, {"B0", 30.87, 1.92, 0.001},

	{"C1", 32.70, 1.92, 0.001}, {"C#1", 34.65, 1.92, 0.001}, {"D1", 36.71, 1.92, 0.001},
	{"D#1", 38.89, 1.92, 0.001}, {"E1", 41.20, 1.92, 0.001}, {"F1", 43.65, 1.92, 0.001},
	{"F#1", 46.25, 1.92, 0.001}, {"G1", 49.00, 1.92, 0.001}, {"G#1", 51.91, 1.92, 0.001},
	{"A1", 55.00, 1.92, 0.001}, {"A#1", 58.27, 1.92, 0.001}, {"B1", 61.74, 1.92, 0.001},

	{"C2", 65.41, 1.92, 0.001}, {"C#2", 69.30, 1.92, 0.001}, {"D2", 73.42, 1.92, 0.001},
	{"D#2", 77.78, 1.92, 0.001}, {"E2", 82.41, 1.92, 0.001}, {"F2", 87.31, 1.92, 0.001},
	{"F#2", 92.50, 1.92, 0.001}, {"G2", 98.00, 1.92, 0.001}, {"G#2", 103.83, 1.92, 0.001},
	{"A2", 110.00, 1.92, 0.001}, {"A#2", 116.54, 1.92, 0.001}, {"B2", 123.47, 1.92, 0.001},

	{"C3", 130.81, 0.96, 0.001}, {"C#3", 138.59, 0.96, 0.001}, {"D3", 146.83, 0.96, 0.001},
	{"D#3", 155.56, 0.96, 0.001}, {"E3", 164.81, 0.96, 0.001}, {"F3", 174.61, 0.96, 0.001},
	{"F#3", 185.00, 0.96, 0.001}, {"G3", 196.00, 0.96, 0.001}, {"G#3", 207.65, 0.96, 0.001},
	{"A3", 220.00, 0.96, 0.001}, {"A#3", 233.08, 0.96, 0.001}, {"B3", 246.94, 0.96, 0.001},

	{"C4", 261.63, 0.96, 0.001}, {"C#4", 277.18, 0.96, 0.001}, {"D4", 293.66, 0.96, 0.001},
	{"D#4", 311.13, 0.96, 0.001}, {"E4", 329.63, 0.96, 0.001}, {"F4", 349.23, 0.96, 0.001},
	{"F#4", 369.99, 0.96, 0.001}, {"G4", 392.00, 0.96, 0.001}, {"G#4", 415.30, 0.96, 0.001},
	{"A4", 440.00, 0.96, 0.001}, {"A#4", 466.16, 0.96, 0.001}, {"B4", 493.88, 0.96, 0.001},

	{"C5", 523.25, 0.96, 0.0008},
}

func init() {
	if len(noteTable) != NoteCount {
		panic("piano: noteTable length does not match NoteCount")
	}
}
