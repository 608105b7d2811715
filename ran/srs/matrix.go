package srs

import (
	"math"
	"math/cmplx"
)

// MaxRxPorts and MaxTxPorts bound the dense channel matrix dimensions.
const (
	MaxRxPorts = 4
	MaxTxPorts = 4
)

// ChannelMatrix is a dense Rx x Tx complex channel estimate, stored
// row-major by (rxPort, txPort), mirroring srsran::srs_channel_matrix.
type ChannelMatrix struct {
	nofRx, nofTx int
	coeff        []complex64
}

// NewChannelMatrix allocates a zeroed nofRx x nofTx matrix.
func NewChannelMatrix(nofRx, nofTx int) ChannelMatrix {
	return ChannelMatrix{nofRx: nofRx, nofTx: nofTx, coeff: make([]complex64, nofRx*nofTx)}
}

// NofRxPorts returns the receive port dimension.
func (m ChannelMatrix) NofRxPorts() int { return m.nofRx }

// NofTxPorts returns the transmit port dimension.
func (m ChannelMatrix) NofTxPorts() int { return m.nofTx }

// Get returns the channel coefficient for the given (rx, tx) port pair.
func (m ChannelMatrix) Get(rx, tx int) complex64 {
	return m.coeff[rx*m.nofTx+tx]
}

// Set stores the channel coefficient for the given (rx, tx) port pair.
func (m ChannelMatrix) Set(rx, tx int, v complex64) {
	m.coeff[rx*m.nofTx+tx] = v
}

// Scale multiplies every coefficient by a real scalar, in place.
func (m ChannelMatrix) Scale(s float32) {
	for i, c := range m.coeff {
		m.coeff[i] = complex64(complex(float64(real(c))*float64(s), float64(imag(c))*float64(s)))
	}
}

// FrobeniusNorm returns sqrt(sum |h_ij|^2), used by the channel-state
// manager to derive a noise-floor estimate for TPMI selection
// (ue_channel_state_manager::update_srs_channel_matrix).
func (m ChannelMatrix) FrobeniusNorm() float64 {
	var acc float64
	for _, c := range m.coeff {
		acc += real(cmplx.Conj(complex128(c)) * complex128(c))
	}
	return math.Sqrt(acc)
}
