package model

// Version constants for persisted results.
const (
	// ResultVersion is the version of the fingerprinted result layout.
	ResultVersion = "1"

	// EngineVersion is the incimine mining engine version.
	EngineVersion = "0.1.0"
)
