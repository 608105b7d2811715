package pusch

import (
	"math"

	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
)

// LayerSelectInfo is the best codebook entry found for one layer count,
// mirroring one element of srsran::pusch_tpmi_select_info's per-rank table.
type LayerSelectInfo struct {
	NofLayers int
	TPMI      int
	SINRsDB   []float64
}

// channelMatrixToCMat converts the dense SRS channel estimate into the
// selector's internal matrix representation (rows=Rx ports, cols=Tx ports).
func channelMatrixToCMat(h srs.ChannelMatrix) cmat {
	m := newCMat(h.NofRxPorts(), h.NofTxPorts())
	for r := 0; r < h.NofRxPorts(); r++ {
		for c := 0; c < h.NofTxPorts(); c++ {
			m.set(r, c, complex128(h.Get(r, c)))
		}
	}
	return m
}

// GetTPMISelectInfo evaluates every rank from 1 to min(nofTxPorts,
// nofRxPorts, maxRank) and, within each rank, every codebook-subset
// permitted precoder, returning the TPMI maximising the arithmetic mean of
// the per-layer SINRs at that rank. Mirrors
// srsran::get_tpmi_select_info's contract: get_tpmi_select_info(H, sigma2,
// max_rank, codebook_subset) -> info.
func GetTPMISelectInfo(channel srs.ChannelMatrix, noiseVariance float64, maxRank int, subset CodebookSubset) []LayerSelectInfo {
	if noiseVariance <= 0 {
		noiseVariance = 1e-12
	}
	maxR := maxRank
	if channel.NofTxPorts() < maxR {
		maxR = channel.NofTxPorts()
	}
	if channel.NofRxPorts() < maxR {
		maxR = channel.NofRxPorts()
	}
	if maxR > 4 {
		maxR = 4
	}

	h := channelMatrixToCMat(channel)
	out := make([]LayerSelectInfo, 0, maxR)

	for r := 1; r <= maxR; r++ {
		candidates := buildCodebook(channel.NofTxPorts(), r)
		bestMean := math.Inf(-1)
		var best LayerSelectInfo
		found := false

		for _, p := range candidates {
			if !allowedBySubset(p.coherence, subset) {
				continue
			}
			heff := h.mul(p.matrix())
			sinrsLinear, ok := layerSINRsLinear(heff, noiseVariance)
			if !ok {
				continue
			}
			mean := arithmeticMean(sinrsLinear)
			if mean <= bestMean {
				continue
			}
			bestMean = mean
			sinrsDB := make([]float64, len(sinrsLinear))
			for i, s := range sinrsLinear {
				sinrsDB[i] = 10 * math.Log10(1+s)
			}
			best = LayerSelectInfo{NofLayers: r, TPMI: p.tpmi, SINRsDB: sinrsDB}
			found = true
		}

		if found {
			out = append(out, best)
		}
	}

	return out
}

func arithmeticMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// layerSINRsLinear computes the per-layer linear SINR of the effective
// channel heff = H*W (Rx x r), following the Gram-matrix/cofactor method:
// for r=1, SINR = sum_j |heff_j|^2 / sigma2 (equivalent to the general
// case's scalar determinant ratio); for r>=2, form G = heff^H * heff,
// add sigma2 to its diagonal, and take SINR_k = 1/(sigma2 * (G^-1)_kk) - 1.
func layerSINRsLinear(heff cmat, noiseVariance float64) ([]float64, bool) {
	r := heff.cols
	if r == 1 {
		var power float64
		for j := 0; j < heff.rows; j++ {
			v := heff.at(j, 0)
			power += real(v)*real(v) + imag(v)*imag(v)
		}
		return []float64{power / noiseVariance}, true
	}

	gram := gramMatrix(heff).addScaledIdentity(complex(noiseVariance, 0))
	inv, ok := inverse(gram)
	if !ok {
		return nil, false
	}
	out := make([]float64, r)
	for k := 0; k < r; k++ {
		diag := real(inv.at(k, k))
		if diag <= 0 {
			diag = 1e-12
		}
		sinr := 1/(noiseVariance*diag) - 1
		if sinr < 0 {
			sinr = 0
		}
		out[k] = sinr
	}
	return out, true
}
