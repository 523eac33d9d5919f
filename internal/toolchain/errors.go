package toolchain

import (
	"errors"
	"fmt"
)

// ErrToolchainNotFound is returned when no Micro Focus installation can be located.
var ErrToolchainNotFound = errors.New("COBOL environment not found")

// InvalidProductError is returned when the options file names a product that is neither ED nor ES.
type InvalidProductError struct {
	Value string
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("Invalid Micro Focus product specified: %q", e.Value)
}

var errNoVersionLine = errors.New("no cobol version line")
