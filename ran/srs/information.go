package srs

import "math"

const nRBsc = 12

// Information holds the per-Tx-antenna-port derived SRS parameters needed
// to generate and locate the low-PAPR reference sequence, mirroring
// srsran::srs_information (lib/ran/srs/srs_information.cpp).
type Information struct {
	// SequenceLength L = m_SRS * 12 / comb_size.
	SequenceLength int
	// SequenceGroup u, fixed by SequenceID since hopping is disabled.
	SequenceGroup int
	// SequenceNumber v, fixed at 0 since hopping is disabled.
	SequenceNumber int
	// Alpha is the cyclic shift angle, in radians.
	Alpha float64
	// MappingInitialSubcarrier k0, the grid subcarrier offset of the first sample.
	MappingInitialSubcarrier int
	// CombSize is carried through for convenience.
	CombSize int
	// NCS is this port's cyclic shift index (before the 2π/NCSMax conversion).
	NCS int
	// NCSMax is the maximum number of cyclic shifts for the configured comb size.
	NCSMax int
}

// GetInformation derives the per-antenna-port SRS parameters for resource
// configuration c and Tx antenna port index iAntennaPort, matching
// srsran::get_srs_information.
func GetInformation(c ResourceConfiguration, iAntennaPort int) Information {
	bw, ok := LookupBandwidth(c.ConfigurationIndex, c.BandwidthIndex)
	if !ok {
		return Information{}
	}

	sequenceLength := bw.MSRS * nRBsc / int(c.Comb)
	combSize := int(c.Comb)

	// No group/sequence hopping: u is a direct function of the sequence ID, v
	// is fixed.
	u := c.SequenceID % 30
	v := 0

	nCSMax := c.Comb.NCSMax()

	// Port-specific cyclic shift: n_cs_max is always a multiple of the port count.
	cyclicShiftPort := (c.CyclicShift + (nCSMax*iAntennaPort)/c.NofAntennaPorts) % nCSMax
	alpha := 2 * math.Pi * float64(cyclicShiftPort) / float64(nCSMax)

	// Initial subcarrier: comb offset, shifted for interleaved odd ports, plus
	// the frequency-shift and frequency-hopping-stage contribution.
	kTC := c.CombOffset
	if c.CyclicShift >= nCSMax/2 && c.CyclicShift < nCSMax && c.NofAntennaPorts == 4 && (iAntennaPort == 1 || iAntennaPort == 3) {
		kTC = (kTC + combSize/2) % combSize
	}
	k0Bar := c.FreqShift*nRBsc + kTC

	sum := 0
	for b := 0; b <= c.BandwidthIndex; b++ {
		bwB, ok := LookupBandwidth(c.ConfigurationIndex, b)
		if !ok {
			continue
		}
		mSRS := bwB.MSRS * nRBsc / combSize
		nB := (4 * c.FreqPosition / bwB.MSRS) % bwB.N
		sum += combSize * mSRS * nB
	}

	return Information{
		SequenceLength:           sequenceLength,
		SequenceGroup:            u,
		SequenceNumber:           v,
		Alpha:                    alpha,
		MappingInitialSubcarrier: k0Bar + sum,
		CombSize:                 combSize,
		NCS:                      cyclicShiftPort,
		NCSMax:                   nCSMax,
	}
}

// InterleavedPilots reports whether this configuration uses the 4-port
// interleaved pilot pattern (4 antenna ports, cyclic shift in the upper
// half of the cyclic-shift range).
func InterleavedPilots(c ResourceConfiguration) bool {
	return c.NofAntennaPorts == 4 && c.CyclicShift >= c.Comb.NCSMax()/2
}
