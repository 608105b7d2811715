// Package grid implements the uplink resource-grid reader capability and
// the reference-counted handle that lets an admission-window repository
// and its in-flight per-PDU tasks share ownership of one grid instance.
package grid

// Reader is the read capability a resource grid exposes to the uplink
// pipeline: bulk extraction of one OFDM symbol's worth of resource
// elements for one receive port, strided reads for comb-mapped signals
// (SRS, DMRS), mirroring srsran::resource_grid_reader.
type Reader interface {
	// Get copies into dst the resource elements of receive port, symbol
	// symbol, starting at subcarrier k0 and strided by stride subcarriers.
	Get(dst []complex64, port, symbol, k0, stride int)
}

// Dims describes the static dimensions of a resource grid.
type Dims struct {
	NofPorts   int
	NofSymbols int
	NofSubcarriers int
}
