package errors

import (
	"fmt"
	"log/slog"
	"strings"
)

// Severity classifies the impact of a failure. Severities are totally
// ordered: SeverityInfo < SeverityWarning < SeverityError < SeverityCritical.
type Severity int

const (
	// SeverityInfo marks conditions worth recording that do not indicate
	// a failure of the caller's intent.
	SeverityInfo Severity = iota

	// SeverityWarning marks degraded but tolerable conditions.
	SeverityWarning

	// SeverityError marks a failed operation.
	SeverityError

	// SeverityCritical marks failures that should abort the process or
	// page an operator.
	SeverityCritical
)

var severityNames = [...]string{
	SeverityInfo:     "INFO",
	SeverityWarning:  "WARN",
	SeverityError:    "ERROR",
	SeverityCritical: "CRITICAL",
}

// String returns the upper-case display name of the severity. Values
// outside the defined range render as SEVERITY(n).
func (s Severity) String() string {
	if s.valid() {
		return severityNames[s]
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// ParseSeverity parses a severity name case-insensitively. Both "WARN"
// and "WARNING" are accepted.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return SeverityInfo, nil
	case "WARN", "WARNING":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	case "CRITICAL":
		return SeverityCritical, nil
	}
	return SeverityError, fmt.Errorf("erks: unknown severity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.normalize() >= other.normalize()
}

// Level maps the severity onto a log/slog level. SeverityCritical maps
// four steps above slog.LevelError so handlers can filter it separately.
func (s Severity) Level() slog.Level {
	switch s.normalize() {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityCritical:
		return slog.LevelError + 4
	default:
		return slog.LevelError
	}
}

func (s Severity) valid() bool {
	return s >= SeverityInfo && s <= SeverityCritical
}

// normalize treats out-of-range values as SeverityError.
func (s Severity) normalize() Severity {
	if s.valid() {
		return s
	}
	return SeverityError
}
