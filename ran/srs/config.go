// Package srs implements the uplink Sounding Reference Signal model: the
// resource configuration carried on the FAPI boundary, the TS 38.211
// 6.4.1.4.3 bandwidth derivation, the wideband channel estimator, and the
// channel-matrix/result types consumed by the PUSCH TPMI selector and the
// channel-state manager.
package srs

import "fmt"

// CombSize is the subcarrier stride used by the SRS comb mapping.
type CombSize int

const (
	CombSizeTwo  CombSize = 2
	CombSizeFour CombSize = 4
)

// NCSMax returns the maximum number of cyclic shifts supported by the comb
// size: 12 for comb-4, 8 for comb-2 (TS 38.211 6.4.1.4.2).
func (c CombSize) NCSMax() int {
	if c == CombSizeFour {
		return 12
	}
	return 8
}

// HoppingMode selects the (currently unsupported, see Validate) sequence
// and group hopping behaviour of the SRS sequence.
type HoppingMode int

const (
	HoppingNeither HoppingMode = iota
	HoppingGroup
	HoppingSequence
)

// Periodicity describes a periodic (as opposed to aperiodic) SRS resource.
type Periodicity struct {
	Period uint16
	Offset uint16
}

// ResourceConfiguration is the FAPI-carried SRS resource description for
// one UE, matching srsran::srs_resource_configuration.
type ResourceConfiguration struct {
	// NofAntennaPorts is the number of Tx antenna ports used to sound: 1, 2 or 4.
	NofAntennaPorts int
	// NofSymbols is the number of OFDM symbols the SRS resource occupies: 1, 2 or 4.
	NofSymbols int
	// StartSymbol is the first OFDM symbol of the SRS allocation, in [0,13].
	StartSymbol int
	// ConfigurationIndex selects the TS 38.211 6.4.1.4.3 bandwidth table row, in [0,63].
	ConfigurationIndex int
	// SequenceID seeds the low-PAPR sequence group/number, in [0,1023].
	SequenceID int
	// BandwidthIndex selects among up to 4 frequency hopping stages, in [0,3].
	BandwidthIndex int
	// CombSize is the subcarrier comb stride.
	Comb CombSize
	// CombOffset is the comb sub-offset, in [0, Comb).
	CombOffset int
	// CyclicShift selects the base cyclic shift, in [0, NCSMax()-1].
	CyclicShift int
	// FreqPosition is the frequency-domain position n_RRC, in [0,67].
	FreqPosition int
	// FreqShift is the frequency shift, in [0,268].
	FreqShift int
	// FreqHopping is the frequency hopping configuration b_hop, in [0,3].
	FreqHopping int
	// Hopping selects sequence/group hopping (only HoppingNeither is supported).
	Hopping HoppingMode
	// Periodic, if non-nil, marks this as a periodic SRS resource.
	Periodic *Periodicity
}

// EndSymbol returns the index of the last OFDM symbol the resource occupies,
// used by the PDU slot repository to select the dispatch bucket.
func (c ResourceConfiguration) EndSymbol() int {
	return c.StartSymbol + c.NofSymbols - 1
}

// Validate checks the resource configuration's structural invariants and
// the scope restriction that this core does not support SRS hopping (see
// srsran::get_srs_information's assertion that hopping == neither and
// freq_hopping >= bandwidth_index).
func (c ResourceConfiguration) Validate(maxSupportedPRB int) error {
	switch c.NofAntennaPorts {
	case 1, 2, 4:
	default:
		return fmt.Errorf("srs: invalid nof_antenna_ports %d", c.NofAntennaPorts)
	}
	switch c.NofSymbols {
	case 1, 2, 4:
	default:
		return fmt.Errorf("srs: invalid nof_symbols %d", c.NofSymbols)
	}
	if c.StartSymbol < 0 || c.StartSymbol > 13 {
		return fmt.Errorf("srs: start_symbol %d out of range [0,13]", c.StartSymbol)
	}
	if c.StartSymbol+c.NofSymbols > 14 {
		return fmt.Errorf("srs: start_symbol %d + nof_symbols %d exceeds 14", c.StartSymbol, c.NofSymbols)
	}
	if c.ConfigurationIndex < 0 || c.ConfigurationIndex > 63 {
		return fmt.Errorf("srs: configuration_index %d out of range [0,63]", c.ConfigurationIndex)
	}
	if c.SequenceID < 0 || c.SequenceID > 1023 {
		return fmt.Errorf("srs: sequence_id %d out of range [0,1023]", c.SequenceID)
	}
	if c.BandwidthIndex < 0 || c.BandwidthIndex > 3 {
		return fmt.Errorf("srs: bandwidth_index %d out of range [0,3]", c.BandwidthIndex)
	}
	if c.Comb != CombSizeTwo && c.Comb != CombSizeFour {
		return fmt.Errorf("srs: invalid comb_size %d", c.Comb)
	}
	if c.CombOffset < 0 || c.CombOffset >= int(c.Comb) {
		return fmt.Errorf("srs: comb_offset %d out of range [0,%d)", c.CombOffset, c.Comb)
	}
	if c.CyclicShift < 0 || c.CyclicShift >= c.Comb.NCSMax() {
		return fmt.Errorf("srs: cyclic_shift %d out of range [0,%d)", c.CyclicShift, c.Comb.NCSMax())
	}
	if c.FreqPosition < 0 || c.FreqPosition > 67 {
		return fmt.Errorf("srs: freq_position %d out of range [0,67]", c.FreqPosition)
	}
	if c.FreqShift < 0 || c.FreqShift > 268 {
		return fmt.Errorf("srs: freq_shift %d out of range [0,268]", c.FreqShift)
	}
	if c.FreqHopping < 0 || c.FreqHopping > 3 {
		return fmt.Errorf("srs: freq_hopping %d out of range [0,3]", c.FreqHopping)
	}
	if c.Hopping != HoppingNeither {
		return fmt.Errorf("srs: sequence/group hopping is not supported by this core")
	}
	if c.FreqHopping < c.BandwidthIndex {
		return fmt.Errorf("srs: freq_hopping %d must be >= bandwidth_index %d (no intra-SRS hopping)", c.FreqHopping, c.BandwidthIndex)
	}

	bw, ok := LookupBandwidth(c.ConfigurationIndex, c.BandwidthIndex)
	if !ok {
		return fmt.Errorf("srs: no bandwidth entry for configuration_index=%d bandwidth_index=%d", c.ConfigurationIndex, c.BandwidthIndex)
	}
	seqLen := bw.MSRS * 12 / int(c.Comb)
	if seqLen > maxSupportedPRB*12/int(c.Comb) {
		return fmt.Errorf("srs: sequence length %d exceeds maximum supported PRB count %d", seqLen, maxSupportedPRB)
	}
	if seqLen > MaxSequenceLength {
		return fmt.Errorf("srs: sequence length %d exceeds hard maximum %d", seqLen, MaxSequenceLength)
	}
	return nil
}
