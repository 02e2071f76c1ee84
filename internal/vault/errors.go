package vault

import "fmt"

// Op names the vault operation that failed.
type Op string

const (
	OpLoadKey Op = "load master key"
	OpEncrypt Op = "encrypt"
	OpDecrypt Op = "decrypt"
)

// Error is returned for every vault failure. A decrypt Error means the stored
// material is corrupt or was sealed under a different master key.
type Error struct {
	Op    Op
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("vault %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func wrap(op Op, format string, args ...any) error {
	return &Error{Op: op, Cause: fmt.Errorf(format, args...)}
}
