// Package errors is the unified error-handling core. It normalizes
// failures from heterogeneous sources (I/O, configuration parsing, HTTP,
// JSON, TOML, glob patterns, data-plane clients and application code)
// into a single taxonomy carrying a severity, a stable code, a
// recoverability flag and structured metadata.
//
// The package is imported under the alias erks to avoid clashing with
// the standard library:
//
//	import erks "github.com/StricklySoft/erks/pkg/errors"
//
// # Taxonomy
//
// Every failure resolves to exactly one [Code], one [Severity] and one
// recoverability boolean. Codes are registered once, append-only, in a
// process-wide table (see [RegisterCode]). Each code belongs to a
// [Category] ("io", "config", "http", "json", "toml", "glob", "custom",
// "other", plus the extension categories registered by the domain
// subpackages) and describes one [Condition] inside it. [CodeFor] and
// [DefaultSeverityFor] are total lookups over that table.
//
// # Variants and the aggregate
//
// A category variant ([IOError], [CustomError], [OtherError], and the
// types in the domain subpackages) wraps the original cause and embeds
// [Base] for the shared [Variant] behavior. Variants are coerced into
// the aggregate [*Error], which implements [Context] and is what callers
// pass up the stack. The aggregate is immutable: enrichment helpers such
// as [Error.With] return a copy.
//
// # Conversions
//
// [From] converts any error into an [*Error]. Domain subpackages register
// converters from init, so importing a subpackage (even with a blank
// import) enables its conversions:
//
//	import _ "github.com/StricklySoft/erks/pkg/errors/tomlerr"
//
//	if _, err := toml.Decode(data, &cfg); err != nil {
//	    return erks.From(err) // category "toml"
//	}
//
// # Helpers
//
// [Errorf], [Bail] and [Ensure] build Custom errors with code CUSTOM:
//
//	if err := erks.Ensure(n > 0, "n=%d must be positive", n); err != nil {
//	    return err
//	}
//
// # Consuming errors
//
// [Log] writes an error through log/slog at the level derived from its
// severity, [ExitCode] picks a process exit status, and
// [Error.Structured] yields a flat record for log pipelines.
package errors
