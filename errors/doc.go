// Package errors provides structured error types for qtbridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: property path, Go/native type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConstruct, errors.KindInvalidVariant).
//		Path("my_object", "value").
//		NativeType("QVariant").
//		Value(uint32(64)).
//		Detail("unsupported variant case").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AllocationFailed(errors.PhaseAlloc, 64, 4)
//	err := errors.OutOfBounds(errors.PhaseRead, path, 0x10000, 4)
//
// Absence in conversions is reported as a boolean, never as an Error. All
// errors implement the standard error interface and support errors.Is/As.
package errors
