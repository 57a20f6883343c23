package piano

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// peakFrequencyNear returns the frequency (Hz) of the strongest FFT
// bin within [centerHz-spanHz, centerHz+spanHz], using a real-input
// FFT plan rather than a hand-rolled DFT.
func peakFrequencyNear(samples []float32, sampleRate int, centerHz, spanHz float64) (float64, error) {
	n := len(samples)
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return 0, err
	}

	src := make([]float64, n)
	for i, v := range samples {
		src[i] = float64(v)
	}
	dst := make([]complex128, n/2+1)
	plan.Forward(dst, src)

	minBin := int((centerHz - spanHz) * float64(n) / float64(sampleRate))
	maxBin := int((centerHz + spanHz) * float64(n) / float64(sampleRate))
	if minBin < 1 {
		minBin = 1
	}
	if maxBin > len(dst)-1 {
		maxBin = len(dst) - 1
	}
	if minBin >= maxBin {
		return 0, nil
	}

	bestBin := minBin
	bestMag := 0.0
	for k := minBin; k <= maxBin; k++ {
		mag := cmplx.Abs(dst[k])
		if mag > bestMag {
			bestMag = mag
			bestBin = k
		}
	}
	return float64(bestBin) * float64(sampleRate) / float64(n), nil
}

func windowRMS(samples []float32) float64 {
	var sum float64
	for _, v := range samples {
		f := float64(v)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func maxAbs32(samples []float32) float32 {
	var m float32
	for _, v := range samples {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

func maxAbsDiff32(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	max := 0.0
	for i := 0; i < n; i++ {
		d := math.Abs(float64(a[i] - b[i]))
		if d > max {
			max = d
		}
	}
	return max
}
