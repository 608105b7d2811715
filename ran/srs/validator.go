package srs

// IsValid reports whether the resource configuration can be processed by
// this core, mirroring the separate validator srsran's estimator keeps
// alongside its silent-failure estimate() path: callers that need a reason
// should use Validate, callers that only need a boolean use IsValid.
func IsValid(c ResourceConfiguration, maxSupportedPRB int) bool {
	return c.Validate(maxSupportedPRB) == nil
}
