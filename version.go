package intake

import (
	_ "embed"
)

// Version is the release version of the intake module, embedded from the VERSION file.
//
//go:embed VERSION
var Version string
