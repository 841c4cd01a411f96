package extract

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// welchSegmentLength caps the FFT segment size; shorter series use a single
// segment spanning the whole input.
const welchSegmentLength = 256

// welchPSD estimates a one-sided power spectral density with Welch's method:
// Hann-windowed segments at 50% overlap, per-segment mean removal, unit
// sample rate. Returns frequency bins (cycles per sample) and power values,
// or nil slices when the input is too short to transform.
func welchPSD(x []float64) (freqs, psd []float64) {
	n := len(x)
	if n < 2 {
		return nil, nil
	}
	segLen := welchSegmentLength
	if n < segLen {
		segLen = n
	}
	step := segLen / 2
	if step == 0 {
		step = 1
	}

	win := make([]float64, segLen)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)
	var winPower float64
	for _, w := range win {
		winPower += w * w
	}

	fft := fourier.NewFFT(segLen)
	bins := segLen/2 + 1
	psd = make([]float64, bins)
	seg := make([]float64, segLen)
	segments := 0

	for start := 0; start+segLen <= n; start += step {
		copy(seg, x[start:start+segLen])
		mu := meanOf(seg)
		for i := range seg {
			seg[i] = (seg[i] - mu) * win[i]
		}
		coeffs := fft.Coefficients(nil, seg)
		for k, c := range coeffs {
			p := cmplx.Abs(c)
			power := p * p / winPower
			// One-sided spectrum: double everything except DC and,
			// for even segment lengths, the Nyquist bin.
			if k > 0 && !(segLen%2 == 0 && k == bins-1) {
				power *= 2
			}
			psd[k] += power
		}
		segments++
	}
	if segments == 0 {
		return nil, nil
	}
	for k := range psd {
		psd[k] /= float64(segments)
	}

	freqs = make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) / float64(segLen)
	}
	return freqs, psd
}

// spectralCentroid is the power-weighted mean frequency of the PSD.
func spectralCentroid(freqs, psd []float64) float64 {
	var total, weighted float64
	for k := range psd {
		total += psd[k]
		weighted += freqs[k] * psd[k]
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// spectralEntropy is the Shannon entropy (natural log) of the normalized PSD.
func spectralEntropy(psd []float64) float64 {
	var total float64
	for _, p := range psd {
		total += p
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, p := range psd {
		if p <= 0 {
			continue
		}
		q := p / total
		h -= q * math.Log(q)
	}
	return h
}

// dominantFrequency is the bin with the highest power.
func dominantFrequency(freqs, psd []float64) float64 {
	if len(psd) == 0 {
		return 0
	}
	best := 0
	for k := 1; k < len(psd); k++ {
		if psd[k] > psd[best] {
			best = k
		}
	}
	return freqs[best]
}
