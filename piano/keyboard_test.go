package piano

import (
	"math"
	"testing"
)

const testSampleRate = 48000

func newTestKeyboard(t *testing.T, blockSize, threads int) *Keyboard {
	t.Helper()
	kb, err := NewKeyboard(testSampleRate, blockSize, threads)
	if err != nil {
		t.Fatalf("NewKeyboard: %v", err)
	}
	t.Cleanup(kb.Close)
	return kb
}

func renderSingleThreaded(kb *Keyboard, n int, gain float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = kb.GetNextSample(gain)
	}
	return out
}

// S1: silent engine produces exactly zero.
func TestKeyboardSilence(t *testing.T) {
	kb := newTestKeyboard(t, 256, 4)
	out := renderSingleThreaded(kb, testSampleRate*2, 1.0)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0 in a silent engine", i, v)
		}
	}
}

// S2: hit C2 and expect audible output with a spectral peak near 65.41 Hz.
func TestKeyboardHitC2(t *testing.T) {
	const c2Index = 15
	kb := newTestKeyboard(t, 256, 4)

	if err := kb.Hit(c2Index, 2.5); err != nil {
		t.Fatalf("Hit: %v", err)
	}
	out := renderSingleThreaded(kb, testSampleRate*2, 1.0)

	if m := maxAbs32(out); m <= 0.1 {
		t.Fatalf("max|x| = %v, want > 0.1", m)
	}

	var sawNonZero bool
	for _, v := range out[:50] {
		if v != 0 {
			sawNonZero = true
			break
		}
	}
	if !sawNonZero {
		t.Fatal("first 50 samples after hit are all zero")
	}

	peak, err := peakFrequencyNear(out, testSampleRate, 65.41, 5.0)
	if err != nil {
		t.Fatalf("peakFrequencyNear: %v", err)
	}
	if math.Abs(peak-65.41)/65.41 > 0.01 {
		t.Fatalf("spectral peak = %v Hz, want within 1%% of 65.41 Hz", peak)
	}
}

// S3: a second, harder hit two seconds later produces a clearly larger attack.
func TestKeyboardDoubleHitSecondLouder(t *testing.T) {
	const c2Index = 15
	kb := newTestKeyboard(t, 256, 4)

	if err := kb.Hit(c2Index, 2.5); err != nil {
		t.Fatalf("Hit: %v", err)
	}
	first := renderSingleThreaded(kb, testSampleRate*2, 1.0)

	if err := kb.Hit(c2Index, 5.5); err != nil {
		t.Fatalf("second Hit: %v", err)
	}
	second := renderSingleThreaded(kb, testSampleRate*2, 1.0)

	firstPeak := maxAbs32(first)
	secondPeak := maxAbs32(second)
	if secondPeak <= firstPeak {
		t.Fatalf("second attack peak %v did not exceed first attack peak %v", secondPeak, firstPeak)
	}
}

// S4: damping 0.5s after a hit brings the amplitude down by 1e-4 within a second.
func TestKeyboardHitThenDamp(t *testing.T) {
	const a0Index = 0
	kb := newTestKeyboard(t, 256, 4)

	if err := kb.Hit(a0Index, 2.5); err != nil {
		t.Fatalf("Hit: %v", err)
	}
	pre := renderSingleThreaded(kb, testSampleRate/2, 1.0) // 0.5s
	preAmp := maxAbs32(pre)

	if err := kb.Damp(a0Index); err != nil {
		t.Fatalf("Damp: %v", err)
	}
	renderSingleThreaded(kb, testSampleRate, 1.0) // let 1s elapse
	probe := renderSingleThreaded(kb, 4800, 1.0)  // 100ms window to sample amplitude
	postAmp := maxAbs32(probe)

	if preAmp == 0 {
		t.Fatal("pre-damp amplitude is zero, scenario is not exercising anything")
	}
	if postAmp >= preAmp*1e-4 {
		t.Fatalf("post-damp amplitude %v is not < 1e-4 of pre-damp amplitude %v", postAmp, preAmp)
	}
}

// S5: single- and multi-threaded rendering agree within 1e-5.
func TestKeyboardSingleVsMultiThreadedConsistency(t *testing.T) {
	const c4Index = 39
	const blockSize = 256

	single := newTestKeyboard(t, blockSize, 1)
	if err := single.Hit(c4Index, 3.0); err != nil {
		t.Fatalf("Hit (single): %v", err)
	}

	multi := newTestKeyboard(t, blockSize, 4)
	if err := multi.Hit(c4Index, 3.0); err != nil {
		t.Fatalf("Hit (multi): %v", err)
	}

	const totalFrames = testSampleRate * 5
	singleOut := make([]float32, 0, totalFrames)
	multiOut := make([]float32, 0, totalFrames)
	block := make([]float32, blockSize)

	for rendered := 0; rendered < totalFrames; rendered += blockSize {
		n := blockSize
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}
		single.GetNextBlock(block[:n], 1.0)
		singleOut = append(singleOut, block[:n]...)
	}
	for rendered := 0; rendered < totalFrames; rendered += blockSize {
		n := blockSize
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}
		if err := multi.GetNextBlockMultithreaded(block[:n], 1.0); err != nil {
			t.Fatalf("GetNextBlockMultithreaded: %v", err)
		}
		multiOut = append(multiOut, block[:n]...)
	}

	if d := maxAbsDiff32(singleOut, multiOut); d >= 1e-5 {
		t.Fatalf("max|delta| between single- and multi-threaded render = %v, want < 1e-5", d)
	}
}

// S6: hitting every note simultaneously produces finite output with no panics.
func TestKeyboardHitAllNotesSimultaneously(t *testing.T) {
	const blockSize = 256
	kb := newTestKeyboard(t, blockSize, 4)

	for i := 0; i < NoteCount; i++ {
		if err := kb.Hit(i, 2.0); err != nil {
			t.Fatalf("Hit(%d): %v", i, err)
		}
	}

	out := make([]float32, blockSize)
	if err := kb.GetNextBlockMultithreaded(out, 1.0); err != nil {
		t.Fatalf("GetNextBlockMultithreaded: %v", err)
	}
	for i, v := range out {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("sample %d = %v, not finite", i, v)
		}
	}
}

func TestKeyboardUnknownNoteIndex(t *testing.T) {
	kb := newTestKeyboard(t, 256, 1)

	if err := kb.Hit(-1, 1.0); err == nil {
		t.Fatal("expected error for negative note index")
	} else if _, ok := err.(*UnknownNoteError); !ok {
		t.Fatalf("error %v is not *UnknownNoteError", err)
	}

	if err := kb.Hit(NoteCount, 1.0); err == nil {
		t.Fatal("expected error for out-of-range note index")
	}
}

func TestKeyboardGetNextBlockMultithreadedRejectsOversizedBuffer(t *testing.T) {
	kb := newTestKeyboard(t, 128, 2)
	out := make([]float32, 129)
	if err := kb.GetNextBlockMultithreaded(out, 1.0); err != ErrBufferTooLarge {
		t.Fatalf("err = %v, want ErrBufferTooLarge", err)
	}
}

func TestNewKeyboardValidation(t *testing.T) {
	if _, err := NewKeyboard(0, 256, 4); err == nil {
		t.Fatal("expected error for sampleRate = 0")
	}
	if _, err := NewKeyboard(48000, 0, 4); err == nil {
		t.Fatal("expected error for samplesPerBlock = 0")
	}
}
