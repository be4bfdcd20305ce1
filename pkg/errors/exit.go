package errors

// Process exit codes returned by [ExitCode].
const (
	ExitOK       = 0
	ExitWarning  = 1
	ExitFailure  = 2
	ExitCritical = 3
)

// ExitCode maps err to a process exit status from its severity: nil and
// [SeverityInfo] exit 0, [SeverityWarning] exits 1, [SeverityError]
// exits 2 and [SeverityCritical] exits 3.
//
//	if err := run(); err != nil {
//	    fmt.Fprintln(os.Stderr, erks.From(err).Summary())
//	    os.Exit(erks.ExitCode(err))
//	}
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch From(err).Severity().normalize() {
	case SeverityInfo:
		return ExitOK
	case SeverityWarning:
		return ExitWarning
	case SeverityCritical:
		return ExitCritical
	default:
		return ExitFailure
	}
}
