package diag

import "fmt"

// Code is a stable numeric diagnostic code.
//
// Pipeline-owned codes live in the ranges below. Diagnostics produced by an
// external analyzer carry that analyzer's native code verbatim (for the
// TypeScript checker these are its tsNNNN numbers), which is why the ignore
// lists in the checker are configuration, not constants baked in here.
type Code uint16

const (
	// UnknownCode is the zero value for diagnostics without a specific code.
	UnknownCode Code = 0

	// Configuration resolution.
	ConfigNotFound      Code = 1001
	ConfigParseFailed   Code = 1002
	ConfigOptionInvalid Code = 1003

	// Syntax diagnostics from the bundled converter-backed analyzer.
	SynParseFailed        Code = 2001
	SynUnexpectedToken    Code = 2002
	SynUnterminatedString Code = 2003

	// Import resolution.
	ResolveUnresolvable Code = 3001
	ResolveOutsideTree  Code = 3002

	// Dependency graph walking.
	GraphReadFailed Code = 4001
	GraphScanFailed Code = 4002

	// Conversion.
	ConvertFailed Code = 5001

	// Session management.
	SessionWriteFailed   Code = 6001
	SessionCleanupFailed Code = 6002
)

func (c Code) String() string {
	return fmt.Sprintf("TSR%04d", uint16(c))
}
