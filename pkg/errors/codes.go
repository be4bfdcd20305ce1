package errors

import (
	"fmt"
	"sort"
	"sync"
)

// Code is a stable, machine-readable identifier for one failure
// condition. Codes are matched by value, independently of message text.
//
// Codes are designed to be:
//   - Stable: a code never changes meaning once registered
//   - Unique: each failure condition has its own code
//   - Append-only: new domains add codes without renaming existing ones
//   - Self-describing: every registered code carries a default severity,
//     a recoverability flag and a canonical description
type Code string

// Generic codes (category "other").
const (
	// CodeUnknown is the fallback for untyped causes and for any code
	// that is not registered.
	CodeUnknown Code = "UNKNOWN"

	// CodeCancelled indicates the surrounding context was cancelled.
	CodeCancelled Code = "CANCELLED"

	// CodeDeadlineExceeded indicates the surrounding context's deadline
	// passed before the operation completed.
	CodeDeadlineExceeded Code = "DEADLINE_EXCEEDED"
)

// I/O codes (category "io").
const (
	// CodeIO indicates an I/O failure without a finer-grained signal.
	CodeIO Code = "IO_ERROR"

	// CodeIONotFound indicates a file or resource does not exist.
	CodeIONotFound Code = "IO_NOT_FOUND"

	// CodeIOPermissionDenied indicates the process lacks permission.
	CodeIOPermissionDenied Code = "IO_PERMISSION_DENIED"

	// CodeIOAlreadyExists indicates the target already exists.
	CodeIOAlreadyExists Code = "IO_ALREADY_EXISTS"

	// CodeIOTimeout indicates an I/O deadline was exceeded.
	CodeIOTimeout Code = "IO_TIMEOUT"

	// CodeIOInterrupted indicates a system call was interrupted.
	CodeIOInterrupted Code = "IO_INTERRUPTED"

	// CodeIOUnexpectedEOF indicates input ended prematurely.
	CodeIOUnexpectedEOF Code = "IO_UNEXPECTED_EOF"

	// CodeIOClosed indicates use of a closed file or connection.
	CodeIOClosed Code = "IO_CLOSED"

	// CodeIOOutOfResources indicates disk, memory or descriptor exhaustion.
	CodeIOOutOfResources Code = "IO_OUT_OF_RESOURCES"

	// CodeIONetwork indicates a socket-level failure.
	CodeIONetwork Code = "IO_NETWORK"
)

// Configuration codes (category "config").
const (
	// CodeConfig indicates a configuration failure without a finer signal.
	CodeConfig Code = "CONFIG_ERROR"

	// CodeConfigNotFound indicates a required configuration file is missing.
	CodeConfigNotFound Code = "CONFIG_NOT_FOUND"

	// CodeConfigParseFailed indicates a configuration file is malformed.
	CodeConfigParseFailed Code = "CONFIG_PARSE_FAILED"

	// CodeConfigMissingKey indicates a required key has no value.
	CodeConfigMissingKey Code = "CONFIG_MISSING_KEY"

	// CodeConfigInvalidValue indicates a key holds an unusable value.
	CodeConfigInvalidValue Code = "CONFIG_INVALID_VALUE"

	// CodeConfigUnsupportedFormat indicates an unrecognized file format.
	CodeConfigUnsupportedFormat Code = "CONFIG_UNSUPPORTED_FORMAT"

	// CodeConfigEnvironment indicates the process environment could not
	// be read or is inconsistent.
	CodeConfigEnvironment Code = "CONFIG_ENVIRONMENT"
)

// HTTP codes (category "http").
const (
	// CodeHTTP indicates an HTTP failure without a finer signal.
	CodeHTTP Code = "HTTP_ERROR"

	// CodeHTTPTimeout indicates the request timed out.
	CodeHTTPTimeout Code = "HTTP_TIMEOUT"

	// CodeHTTPConnectFailed indicates the connection could not be made.
	CodeHTTPConnectFailed Code = "HTTP_CONNECT_FAILED"

	// CodeHTTPInvalidRequest indicates the request could not be built.
	CodeHTTPInvalidRequest Code = "HTTP_INVALID_REQUEST"

	// CodeHTTPClientError indicates a 4xx response.
	CodeHTTPClientError Code = "HTTP_CLIENT_ERROR"

	// CodeHTTPNotFound indicates a 404 or 410 response.
	CodeHTTPNotFound Code = "HTTP_NOT_FOUND"

	// CodeHTTPUnauthorized indicates a 401 or 403 response.
	CodeHTTPUnauthorized Code = "HTTP_UNAUTHORIZED"

	// CodeHTTPRateLimited indicates a 429 response.
	CodeHTTPRateLimited Code = "HTTP_RATE_LIMITED"

	// CodeHTTPServerError indicates a 5xx response.
	CodeHTTPServerError Code = "HTTP_SERVER_ERROR"
)

// JSON codes (category "json").
const (
	// CodeJSON indicates a JSON failure without a finer signal.
	CodeJSON Code = "JSON_ERROR"

	// CodeJSONSyntax indicates malformed JSON.
	CodeJSONSyntax Code = "JSON_SYNTAX"

	// CodeJSONTypeMismatch indicates a JSON value of the wrong type.
	CodeJSONTypeMismatch Code = "JSON_TYPE_MISMATCH"

	// CodeJSONUnexpectedEOF indicates truncated JSON input.
	CodeJSONUnexpectedEOF Code = "JSON_UNEXPECTED_EOF"

	// CodeJSONInvalidTarget indicates a programming error: decoding into
	// a nil or non-pointer value.
	CodeJSONInvalidTarget Code = "JSON_INVALID_TARGET"
)

// TOML codes (category "toml").
const (
	// CodeTOML indicates a TOML failure without a finer signal.
	CodeTOML Code = "TOML_ERROR"

	// CodeTOMLParseFailed indicates malformed TOML.
	CodeTOMLParseFailed Code = "TOML_PARSE_FAILED"

	// CodeTOMLUndecodedKeys indicates keys present in the document that
	// the target type does not declare.
	CodeTOMLUndecodedKeys Code = "TOML_UNDECODED_KEYS"
)

// Glob codes (category "glob").
const (
	// CodeGlobPatternInvalid indicates a malformed glob pattern.
	CodeGlobPatternInvalid Code = "GLOB_PATTERN_INVALID"

	// CodeGlobIteration indicates a failure while walking matches.
	CodeGlobIteration Code = "GLOB_ITERATION"
)

// Custom codes (category "custom").
const (
	// CodeCustom is the code of errors built with [Errorf], [Bail]
	// and [Ensure].
	CodeCustom Code = "CUSTOM"

	// CodeValidation indicates input that violates a constraint.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeInvalidState indicates an operation attempted in the wrong state.
	CodeInvalidState Code = "INVALID_STATE"

	// CodeResourceLimit indicates a quota or capacity limit was reached.
	CodeResourceLimit Code = "RESOURCE_LIMIT"

	// CodeBusinessLogic indicates a domain rule rejected the operation.
	CodeBusinessLogic Code = "BUSINESS_LOGIC"
)

// CodeDefinition describes a registered code.
type CodeDefinition struct {
	// Code is the identifier being registered. Required.
	Code Code

	// Category owns the code. Required.
	Category Category

	// Condition is the failure condition the code stands for within its
	// category. [CodeFor] resolves (Category, Condition) to Code.
	Condition Condition

	// Severity is the default severity of errors carrying the code.
	Severity Severity

	// Recoverable reports whether retrying is meaningful by default.
	Recoverable bool

	// Description is the canonical, lowercase, human-readable summary
	// used as the message prefix and as the fallback message.
	Description string

	// Generic marks the code as its category's fallback for unmapped
	// conditions. At most one code per category may be generic.
	Generic bool
}

type classKey struct {
	category  Category
	condition Condition
}

// registry holds every registered code. It is written from init
// functions and read afterwards.
var registry = struct {
	mu      sync.RWMutex
	codes   map[Code]CodeDefinition
	index   map[classKey]Code
	generic map[Category]Code
}{
	codes:   make(map[Code]CodeDefinition),
	index:   make(map[classKey]Code),
	generic: make(map[Category]Code),
}

// RegisterCode adds a code to the process-wide registry. It is intended
// to be called from init functions of domain packages.
//
// RegisterCode panics if the code or category is empty, if the code is
// already registered, if another code already claims the same
// (category, condition) pair, or if the category already has a generic
// code. Registration mistakes are programming errors caught at startup.
func RegisterCode(def CodeDefinition) {
	if def.Code == "" || def.Category == "" {
		panic("erks: RegisterCode requires a code and a category")
	}
	if def.Condition == "" {
		def.Condition = ConditionGeneric
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, dup := registry.codes[def.Code]; dup {
		panic(fmt.Sprintf("erks: code %s registered twice", def.Code))
	}
	key := classKey{def.Category, def.Condition}
	if other, dup := registry.index[key]; dup {
		panic(fmt.Sprintf("erks: %s/%s already mapped to %s", def.Category, def.Condition, other))
	}
	if def.Generic || def.Condition == ConditionGeneric {
		if other, dup := registry.generic[def.Category]; dup {
			panic(fmt.Sprintf("erks: category %s already has generic code %s", def.Category, other))
		}
		registry.generic[def.Category] = def.Code
	}

	registry.codes[def.Code] = def
	registry.index[key] = def.Code
}

// RegisterCodes registers each definition in order with [RegisterCode].
func RegisterCodes(defs ...CodeDefinition) {
	for _, def := range defs {
		RegisterCode(def)
	}
}

// Codes returns a snapshot of every registered definition, sorted by code.
func Codes() []CodeDefinition {
	registry.mu.RLock()
	defs := make([]CodeDefinition, 0, len(registry.codes))
	for _, def := range registry.codes {
		defs = append(defs, def)
	}
	registry.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// Definition returns the registered definition of the code. Unregistered
// codes resolve to the definition of [CodeUnknown] and ok is false.
func (c Code) Definition() (CodeDefinition, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if def, ok := registry.codes[c]; ok {
		return def, true
	}
	return registry.codes[CodeUnknown], false
}

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// IsRegistered reports whether the code is present in the registry.
func (c Code) IsRegistered() bool {
	_, ok := c.Definition()
	return ok
}

// Description returns the canonical description of the code.
func (c Code) Description() string {
	def, _ := c.Definition()
	return def.Description
}

// Category returns the category that owns the code, or [CategoryOther]
// for unregistered codes.
func (c Code) Category() Category {
	def, _ := c.Definition()
	return def.Category
}

// DefaultSeverity returns the severity errors carrying the code have
// unless overridden. Unregistered codes default to [SeverityError].
func (c Code) DefaultSeverity() Severity {
	def, _ := c.Definition()
	return def.Severity
}

// Recoverable returns the default recoverability of the code.
func (c Code) Recoverable() bool {
	def, _ := c.Definition()
	return def.Recoverable
}

func init() {
	RegisterCodes(
		CodeDefinition{Code: CodeUnknown, Category: CategoryOther, Condition: ConditionGeneric, Severity: SeverityError, Description: "unknown error"},
		CodeDefinition{Code: CodeCancelled, Category: CategoryOther, Condition: ConditionCancelled, Severity: SeverityWarning, Description: "operation cancelled"},
		CodeDefinition{Code: CodeDeadlineExceeded, Category: CategoryOther, Condition: ConditionDeadlineExceeded, Severity: SeverityWarning, Recoverable: true, Description: "deadline exceeded"},

		CodeDefinition{Code: CodeIO, Category: CategoryIO, Condition: ConditionGeneric, Severity: SeverityError, Description: "i/o error"},
		CodeDefinition{Code: CodeIONotFound, Category: CategoryIO, Condition: ConditionNotFound, Severity: SeverityError, Description: "file system error: not found"},
		CodeDefinition{Code: CodeIOPermissionDenied, Category: CategoryIO, Condition: ConditionPermissionDenied, Severity: SeverityCritical, Description: "file system error: permission denied"},
		CodeDefinition{Code: CodeIOAlreadyExists, Category: CategoryIO, Condition: ConditionAlreadyExists, Severity: SeverityWarning, Description: "file system error: already exists"},
		CodeDefinition{Code: CodeIOTimeout, Category: CategoryIO, Condition: ConditionTimeout, Severity: SeverityWarning, Recoverable: true, Description: "i/o timeout"},
		CodeDefinition{Code: CodeIOInterrupted, Category: CategoryIO, Condition: ConditionInterrupted, Severity: SeverityWarning, Recoverable: true, Description: "i/o interrupted"},
		CodeDefinition{Code: CodeIOUnexpectedEOF, Category: CategoryIO, Condition: ConditionUnexpectedEOF, Severity: SeverityError, Description: "unexpected end of input"},
		CodeDefinition{Code: CodeIOClosed, Category: CategoryIO, Condition: ConditionClosed, Severity: SeverityError, Description: "use of closed resource"},
		CodeDefinition{Code: CodeIOOutOfResources, Category: CategoryIO, Condition: ConditionOutOfResources, Severity: SeverityCritical, Recoverable: true, Description: "out of system resources"},
		CodeDefinition{Code: CodeIONetwork, Category: CategoryIO, Condition: ConditionNetwork, Severity: SeverityError, Recoverable: true, Description: "network error"},

		CodeDefinition{Code: CodeConfig, Category: CategoryConfig, Condition: ConditionGeneric, Severity: SeverityError, Description: "configuration error"},
		CodeDefinition{Code: CodeConfigNotFound, Category: CategoryConfig, Condition: ConditionNotFound, Severity: SeverityError, Description: "configuration file not found"},
		CodeDefinition{Code: CodeConfigParseFailed, Category: CategoryConfig, Condition: ConditionParse, Severity: SeverityCritical, Description: "invalid configuration format"},
		CodeDefinition{Code: CodeConfigMissingKey, Category: CategoryConfig, Condition: ConditionMissingKey, Severity: SeverityCritical, Description: "missing configuration key"},
		CodeDefinition{Code: CodeConfigInvalidValue, Category: CategoryConfig, Condition: ConditionInvalidValue, Severity: SeverityCritical, Description: "invalid configuration value"},
		CodeDefinition{Code: CodeConfigUnsupportedFormat, Category: CategoryConfig, Condition: ConditionUnsupportedFormat, Severity: SeverityError, Description: "unsupported configuration format"},
		CodeDefinition{Code: CodeConfigEnvironment, Category: CategoryConfig, Condition: ConditionEnvironment, Severity: SeverityWarning, Recoverable: true, Description: "environment error"},

		CodeDefinition{Code: CodeHTTP, Category: CategoryHTTP, Condition: ConditionGeneric, Severity: SeverityError, Description: "http error"},
		CodeDefinition{Code: CodeHTTPTimeout, Category: CategoryHTTP, Condition: ConditionTimeout, Severity: SeverityWarning, Recoverable: true, Description: "http request timed out"},
		CodeDefinition{Code: CodeHTTPConnectFailed, Category: CategoryHTTP, Condition: ConditionConnect, Severity: SeverityError, Recoverable: true, Description: "http connection failed"},
		CodeDefinition{Code: CodeHTTPInvalidRequest, Category: CategoryHTTP, Condition: ConditionInvalidRequest, Severity: SeverityError, Description: "invalid http request"},
		CodeDefinition{Code: CodeHTTPClientError, Category: CategoryHTTP, Condition: ConditionClientError, Severity: SeverityError, Description: "http client error"},
		CodeDefinition{Code: CodeHTTPNotFound, Category: CategoryHTTP, Condition: ConditionNotFound, Severity: SeverityError, Description: "http resource not found"},
		CodeDefinition{Code: CodeHTTPUnauthorized, Category: CategoryHTTP, Condition: ConditionUnauthorized, Severity: SeverityError, Description: "http request unauthorized"},
		CodeDefinition{Code: CodeHTTPRateLimited, Category: CategoryHTTP, Condition: ConditionRateLimited, Severity: SeverityWarning, Recoverable: true, Description: "http rate limited"},
		CodeDefinition{Code: CodeHTTPServerError, Category: CategoryHTTP, Condition: ConditionServerError, Severity: SeverityCritical, Recoverable: true, Description: "http server error"},

		CodeDefinition{Code: CodeJSON, Category: CategoryJSON, Condition: ConditionGeneric, Severity: SeverityError, Description: "json error"},
		CodeDefinition{Code: CodeJSONSyntax, Category: CategoryJSON, Condition: ConditionSyntax, Severity: SeverityError, Description: "json parsing error"},
		CodeDefinition{Code: CodeJSONTypeMismatch, Category: CategoryJSON, Condition: ConditionTypeMismatch, Severity: SeverityError, Description: "json type mismatch"},
		CodeDefinition{Code: CodeJSONUnexpectedEOF, Category: CategoryJSON, Condition: ConditionUnexpectedEOF, Severity: SeverityError, Description: "unexpected end of json input"},
		CodeDefinition{Code: CodeJSONInvalidTarget, Category: CategoryJSON, Condition: ConditionInvalidTarget, Severity: SeverityCritical, Description: "invalid json decode target"},

		CodeDefinition{Code: CodeTOML, Category: CategoryTOML, Condition: ConditionGeneric, Severity: SeverityError, Description: "toml error"},
		CodeDefinition{Code: CodeTOMLParseFailed, Category: CategoryTOML, Condition: ConditionParse, Severity: SeverityError, Description: "toml parsing error"},
		CodeDefinition{Code: CodeTOMLUndecodedKeys, Category: CategoryTOML, Condition: ConditionUndecodedKeys, Severity: SeverityWarning, Description: "undecoded toml keys"},

		CodeDefinition{Code: CodeGlobPatternInvalid, Category: CategoryGlob, Condition: ConditionPattern, Generic: true, Severity: SeverityWarning, Description: "invalid glob pattern"},
		CodeDefinition{Code: CodeGlobIteration, Category: CategoryGlob, Condition: ConditionIteration, Severity: SeverityWarning, Recoverable: true, Description: "glob iteration error"},

		CodeDefinition{Code: CodeCustom, Category: CategoryCustom, Condition: ConditionGeneric, Severity: SeverityError, Description: "application error"},
		CodeDefinition{Code: CodeValidation, Category: CategoryCustom, Condition: ConditionValidation, Severity: SeverityWarning, Description: "validation error"},
		CodeDefinition{Code: CodeInvalidState, Category: CategoryCustom, Condition: ConditionInvalidState, Severity: SeverityCritical, Description: "invalid state"},
		CodeDefinition{Code: CodeResourceLimit, Category: CategoryCustom, Condition: ConditionResourceLimit, Severity: SeverityError, Recoverable: true, Description: "resource limit exceeded"},
		CodeDefinition{Code: CodeBusinessLogic, Category: CategoryCustom, Condition: ConditionBusinessLogic, Severity: SeverityError, Description: "business rule violated"},
	)
}
