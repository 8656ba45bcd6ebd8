package parser

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVersion is wrapped by VersionError.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// VersionError reports a "! version" directive newer than the parser supports.
// It aborts the whole load.
type VersionError struct {
	File      string
	Line      int
	Declared  float64
	Supported float64
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s line %d: version %g > %g", e.File, e.Line, e.Declared, e.Supported)
}

func (e *VersionError) Unwrap() error {
	return ErrUnsupportedVersion
}
