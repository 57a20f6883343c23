package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-piano-fd/piano"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

func main() {
	note := flag.Int("note", 15, "note index into the keyboard table (0=A0 .. 51=C5; 15=C2)")
	velocity := flag.Float64("velocity", 2.5, "hammer strike velocity in m/s")
	duration := flag.Float64("duration", 3.0, "render duration in seconds")
	dampAfter := flag.Float64("damp-after", math.Inf(1), "apply Damp() this many seconds after the hit (disabled by default)")
	sampleRate := flag.Int("sample-rate", 48000, "render sample rate in Hz")
	blockSize := flag.Int("block-size", 256, "samples per dispatched block")
	threads := flag.Int("threads", 4, "worker pool size, clamped to [1,8]")
	gain := flag.Float64("gain", 0.5, "linear output gain")
	output := flag.String("output", "output.wav", "output WAV file path")
	flag.Parse()

	kb, err := piano.NewKeyboard(*sampleRate, *blockSize, *threads)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating keyboard: %v\n", err)
		os.Exit(1)
	}
	defer kb.Close()

	if err := kb.Hit(*note, *velocity); err != nil {
		fmt.Fprintf(os.Stderr, "error hitting note %d: %v\n", *note, err)
		os.Exit(1)
	}

	totalFrames := int(float64(*sampleRate) * (*duration))
	if totalFrames < 1 {
		totalFrames = 1
	}
	dampAtFrame := -1
	if !math.IsInf(*dampAfter, 1) {
		dampAtFrame = int(float64(*sampleRate) * (*dampAfter))
	}

	fmt.Printf("Rendering note %d at velocity %.2f m/s for %.2fs at %d Hz (%d threads, block=%d)...\n",
		*note, *velocity, *duration, *sampleRate, *threads, *blockSize)

	samples := make([]float32, 0, totalFrames)
	block := make([]float32, *blockSize)
	framesRendered := 0
	for framesRendered < totalFrames {
		n := *blockSize
		if framesRendered+n > totalFrames {
			n = totalFrames - framesRendered
		}
		if dampAtFrame >= 0 && framesRendered <= dampAtFrame && framesRendered+n > dampAtFrame {
			if err := kb.Damp(*note); err != nil {
				fmt.Fprintf(os.Stderr, "error damping note %d: %v\n", *note, err)
				os.Exit(1)
			}
		}
		if err := kb.GetNextBlockMultithreaded(block[:n], float32(*gain)); err != nil {
			fmt.Fprintf(os.Stderr, "error rendering block: %v\n", err)
			os.Exit(1)
		}
		samples = append(samples, block[:n]...)
		framesRendered += n
	}

	file, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, *sampleRate, 16, 1, 1)
	defer encoder.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  *sampleRate,
			NumChannels: 1,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		fmt.Fprintf(os.Stderr, "error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, totalFrames)
}
