package srs

import (
	"math"
	"math/cmplx"
)

// GridReader is the read-only resource-grid capability the estimator needs:
// bulk extraction of one OFDM symbol's worth of REs for one receive port,
// starting at subcarrier k0Bar, strided by the comb size, mirroring the
// resource_grid_reader::get(span, port, symbol, k0, stride) overload used by
// srs_estimator_generic_impl::estimate.
type GridReader interface {
	// GetSymbol fills dst with `len(dst)` subcarriers of receive port
	// rxPort, OFDM symbol index symbol, starting at subcarrier k0Bar and
	// strided by stride subcarriers.
	GetSymbol(dst []complex64, rxPort, symbol, k0Bar, stride int)
}

// SequenceGenerator produces the low-PAPR sounding sequence for one
// antenna port, matching the (u, v, alpha) parameters in Information.
// Implementations own the Zadoff-Chu / computer-generated-sequence tables;
// this core only consumes the generated samples.
type SequenceGenerator interface {
	Generate(info Information) []complex64
}

// TimeAlignmentEstimator fits a time-domain alignment (in seconds) from a
// frequency-domain least-squares channel estimate taken at subcarrier
// stride `stride`, matching srsran::time_alignment_estimator.
type TimeAlignmentEstimator interface {
	Estimate(lse []complex64, stride int, scsHz float64) (value, resolution, min, max float64)
}

// Estimator performs wideband SRS channel estimation, ported from
// srs_estimator_generic_impl::estimate.
type Estimator struct {
	Sequences     SequenceGenerator
	TimeAlignment TimeAlignmentEstimator
	// MaxSupportedPRB bounds the admissible resource-block allocation,
	// passed through to Validate.
	MaxSupportedPRB int
}

// Estimate computes the wideband channel matrix, EPRE/RSRP/noise-variance
// estimates, and aggregate time alignment for configuration c observed on
// nofRxPorts receive ports, or the zero result if c is not valid (see
// IsValid - this mirrors the silent-failure contract of the upstream
// estimator, which expects the caller to have validated beforehand).
func (e Estimator) Estimate(grid GridReader, c ResourceConfiguration, nofRxPorts int) EstimatorResult {
	if !IsValid(c, e.MaxSupportedPRB) {
		return EstimatorResult{}
	}

	matrix := NewChannelMatrix(nofRxPorts, c.NofAntennaPorts)

	var (
		taSum, taResSum, taMinSum, taMaxSum float64
		epreSum, rsrpSum, noiseSum          float64
		nofObservations                     int
	)

	stride := int(c.Comb)
	scsHz := float64(15000)

	for tx := 0; tx < c.NofAntennaPorts; tx++ {
		info := GetInformation(c, tx)
		sequence := e.Sequences.Generate(info)
		if len(sequence) == 0 {
			continue
		}

		for rx := 0; rx < nofRxPorts; rx++ {
			lse := make([]complex64, info.SequenceLength)
			symbolBuf := make([]complex64, info.SequenceLength)

			for s := 0; s < c.NofSymbols; s++ {
				symbol := c.StartSymbol + s
				grid.GetSymbol(symbolBuf, rx, symbol, info.MappingInitialSubcarrier, stride)
				for k := range symbolBuf {
					// Least-squares channel estimate: received sample
					// times the conjugate of the known transmitted chip.
					lse[k] += symbolBuf[k] * complex64(cmplx.Conj(complex128(sequence[k])))
				}
			}
			invNofSymbols := 1.0 / float64(c.NofSymbols)
			for k := range lse {
				lse[k] = complex64(complex128(lse[k]) * complex(invNofSymbols, 0))
			}

			ta, taRes, taMin, taMax := e.TimeAlignment.Estimate(lse, stride, scsHz)
			taSum += ta
			taResSum += taRes
			taMinSum += taMin
			taMaxSum += taMax

			// Compensate the estimated time alignment as a linear phase
			// ramp across subcarriers before averaging to a single
			// wideband coefficient, then accumulate power estimates.
			phaseStep := -2 * math.Pi * ta * scsHz * float64(stride)
			var acc complex128
			var power float64
			for k, v := range lse {
				rot := cmplx.Rect(1, phaseStep*float64(k))
				compensated := complex128(v) * rot
				acc += compensated
				power += real(cmplx.Conj(compensated) * compensated)
			}
			n := float64(len(lse))
			mean := acc / complex(n, 0)
			matrix.Set(rx, tx, complex64(mean))

			meanPower := power / n
			signalPower := real(cmplx.Conj(complex128(mean)) * complex128(mean))
			noisePower := meanPower - signalPower
			if noisePower < 0 {
				noisePower = 0
			}

			epreSum += meanPower
			rsrpSum += signalPower
			noiseSum += noisePower
			nofObservations++
		}
	}

	if nofObservations == 0 {
		return EstimatorResult{ChannelMatrix: matrix}
	}

	n := float64(nofObservations)
	epre := epreSum / n
	rsrp := rsrpSum / n
	noiseVar := noiseSum / n

	// The noise standard deviation is never allowed to fall below 10% of
	// the square root of the RSRP estimate (noise variance at least 1% of
	// RSRP), matching the generic estimator's guard against underestimating noise
	// on a near-ideal channel.
	noiseFloor := math.Sqrt(rsrp) * 0.1
	if math.Sqrt(noiseVar) < noiseFloor {
		noiseVar = noiseFloor * noiseFloor
	}

	return EstimatorResult{
		ChannelMatrix: matrix,
		EPREdB:        float32(10 * math.Log10(epre)),
		RSRPdB:        float32(10 * math.Log10(rsrp)),
		NoiseVariance: float32(noiseVar),
		TimeAlignment: TimeAlignment{
			Value:      taSum / n,
			Resolution: taResSum / n,
			Min:        taMinSum / n,
			Max:        taMaxSum / n,
		},
	}
}
