package demokernels

import (
	"math"
	"math/cmplx"

	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
)

// SequenceGenerator produces a deterministic unit-magnitude sequence from
// an srs.Information's (sequence group, sequence number, alpha) triple. It
// is not a conformant TS 38.211 low-PAPR sequence generator — the real
// Zadoff-Chu/computer-generated-sequence kernel is treated as an external
// collaborator this core does not implement — but it is deterministic and
// phase-coherent across calls with the same Information, which is all the
// estimator's consumers (and this demo) require.
type SequenceGenerator struct{}

// Generate implements srs.SequenceGenerator.
func (SequenceGenerator) Generate(info srs.Information) []complex64 {
	if info.SequenceLength <= 0 {
		return nil
	}
	out := make([]complex64, info.SequenceLength)
	// A root index derived from the sequence group keeps distinct groups
	// phase-distinguishable without claiming 3GPP conformance.
	root := float64(info.SequenceGroup%29 + 1)
	for n := range out {
		phase := math.Pi * root * float64(n) * float64(n+1) / float64(info.SequenceLength)
		out[n] = complex64(cmplx.Rect(1, phase+info.Alpha))
	}
	return out
}

// TimeAlignmentEstimator reports zero alignment with a resolution derived
// from the comb stride and SCS, matching the shape of
// srsran::time_alignment_estimator's contract without implementing its
// correlation search (also an excluded external collaborator).
type TimeAlignmentEstimator struct{}

// Estimate implements srs.TimeAlignmentEstimator.
func (TimeAlignmentEstimator) Estimate(lse []complex64, stride int, scsHz float64) (value, resolution, min, max float64) {
	nCsMax := 12.0
	tauMax := 1.0 / (nCsMax * scsHz * float64(stride))
	res := tauMax / float64(max(len(lse), 1))
	return 0, res, -tauMax, tauMax
}
