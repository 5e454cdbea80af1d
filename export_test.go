package uqstat

// Aliases exposing unexported helpers to the external test package.
var (
	CVAlpha        = cvAlpha
	CVEstimate     = cvEstimate
	TaylorEstimate = taylorEstimate
)
