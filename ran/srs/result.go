package srs

// TimeAlignment is a combined time-alignment measurement across Tx
// antenna ports, mirroring the fields of
// srsran::srs_estimator_result::time_alignment.
type TimeAlignment struct {
	// Value is the estimated time alignment, in seconds.
	Value float64
	// Resolution is the measurement resolution, in seconds.
	Resolution float64
	// Min and Max bound the measurable range, in seconds.
	Min, Max float64
}

// EstimatorResult is the output of the SRS channel estimator, mirroring
// srsran::srs_estimator_result.
type EstimatorResult struct {
	ChannelMatrix ChannelMatrix
	// EPREdB is the energy per resource element, in dB. Zero value means unset.
	EPREdB float32
	// RSRPdB is the reference signal received power, in dB.
	RSRPdB float32
	// NoiseVariance is the linear noise variance estimate.
	NoiseVariance float32
	TimeAlignment TimeAlignment
}
