// Package errors provides standardized error handling patterns for Synapse components.
//
// # Overview
//
// The errors package implements a three-class error classification system: Transient
// (temporary, retryable), Invalid (bad input or configuration, non-retryable), and
// Fatal (unrecoverable, stop processing). This classification lets the graph runtime
// make informed decisions — a Source's dial failure can be retried, a malformed route
// definition cannot, and a module-load failure should abort the whole run.
//
// On top of classification, the package defines the named error Kinds the core
// surfaces during graph build, block initialization, and module load (see the engine
// specification's error table): InvalidName, DuplicateName, UnknownClass, UnknownBlock,
// UnknownPort, AmbiguousPort, NotAConsumer, DuplicateRoute, ReservedName, InvalidConfig,
// PrefixConflict, PatternConflict, EmptyPattern, NoRoute, and ModuleLoadFailure.
//
// # Quick start
//
//	if err := mgr.Initialize(cfg); err != nil {
//	    if errors.Is(err, synerrors.ErrDuplicateName) {
//	        // ...
//	    }
//	}
//
//	return synerrors.WrapInvalid(synerrors.ErrAmbiguousPort, "Manager", "resolveSources", "block has more than one port")
//
// where errors is the standard library package and synerrors is this one.
//
// # Error wrapping pattern
//
// All wrapping follows the format "component.method: action failed: %w", matching the
// teacher's Wrap family so log lines stay greppable across the codebase.
//
// # Integration with errors.Is/As
//
// ClassifiedError implements Unwrap, so errors.Is/errors.As see through it to the
// named Kind sentinel and to any further-wrapped cause.
package errors
