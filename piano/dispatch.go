package piano

// GetNextBlockMultithreaded is the block dispatcher: it zeroes the
// per-thread scratch buffers, enqueues one closure per active string,
// runs the worker pool to completion, and reduces the per-thread
// partials into out with gain.
//
// Buffer length must not exceed the samples_per_block declared at
// construction. Ordering of the string-advance work across threads is
// unspecified; summation across threads is therefore not associative
// and bit-exact reproducibility requires the single-threaded
// GetNextBlock path instead.
func (k *Keyboard) GetNextBlockMultithreaded(out []float32, gain float32) error {
	length := len(out)
	if length > k.samplesPerBlock {
		return ErrBufferTooLarge
	}

	for _, scratch := range k.scratch {
		clearFloat32(scratch[:length])
	}

	for _, str := range k.strings {
		if !str.active {
			continue
		}
		str := str
		k.pool.pushTask(func(threadIdx int) {
			scratch := k.scratch[threadIdx]
			for j := 0; j < length; j++ {
				scratch[j] += str.GetNextSample()
			}
		})
	}

	k.pool.runAndCollect()

	for j := 0; j < length; j++ {
		var sum float32
		for _, scratch := range k.scratch {
			sum += scratch[j]
		}
		out[j] = gain * sum
	}
	return nil
}

func clearFloat32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
