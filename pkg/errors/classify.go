package errors

// Category is the stable lowercase name of a failure domain. It is used
// for log and metric grouping.
type Category string

// Core categories.
const (
	CategoryIO     Category = "io"
	CategoryConfig Category = "config"
	CategoryHTTP   Category = "http"
	CategoryJSON   Category = "json"
	CategoryTOML   Category = "toml"
	CategoryGlob   Category = "glob"
	CategoryCustom Category = "custom"
	CategoryOther  Category = "other"
)

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// Condition names one failure condition inside a category. Conditions
// are shared vocabulary: "not_found" means the same thing for I/O, HTTP
// and object storage, while the resulting [Code] stays domain specific.
type Condition string

// Conditions used by the core categories. Domain subpackages may define
// additional conditions.
const (
	ConditionGeneric           Condition = "generic"
	ConditionNotFound          Condition = "not_found"
	ConditionPermissionDenied  Condition = "permission_denied"
	ConditionAlreadyExists     Condition = "already_exists"
	ConditionTimeout           Condition = "timeout"
	ConditionInterrupted       Condition = "interrupted"
	ConditionUnexpectedEOF     Condition = "unexpected_eof"
	ConditionClosed            Condition = "closed"
	ConditionOutOfResources    Condition = "out_of_resources"
	ConditionNetwork           Condition = "network"
	ConditionCancelled         Condition = "cancelled"
	ConditionDeadlineExceeded  Condition = "deadline_exceeded"
	ConditionParse             Condition = "parse"
	ConditionMissingKey        Condition = "missing_key"
	ConditionInvalidValue      Condition = "invalid_value"
	ConditionUnsupportedFormat Condition = "unsupported_format"
	ConditionEnvironment       Condition = "environment"
	ConditionConnect           Condition = "connect"
	ConditionInvalidRequest    Condition = "invalid_request"
	ConditionClientError       Condition = "client_error"
	ConditionUnauthorized      Condition = "unauthorized"
	ConditionRateLimited       Condition = "rate_limited"
	ConditionServerError       Condition = "server_error"
	ConditionSyntax            Condition = "syntax"
	ConditionTypeMismatch      Condition = "type_mismatch"
	ConditionInvalidTarget     Condition = "invalid_target"
	ConditionUndecodedKeys     Condition = "undecoded_keys"
	ConditionPattern           Condition = "pattern"
	ConditionIteration         Condition = "iteration"
	ConditionValidation        Condition = "validation"
	ConditionInvalidState      Condition = "invalid_state"
	ConditionResourceLimit     Condition = "resource_limit"
	ConditionBusinessLogic     Condition = "business_logic"
	ConditionConflict          Condition = "conflict"
	ConditionUnavailable       Condition = "unavailable"
)

// String returns the condition name.
func (c Condition) String() string {
	return string(c)
}

// CodeFor returns the code registered for the condition within the
// category. When the pair is not registered, the category's generic code
// is returned, and when the category itself is unknown the result is
// [CodeUnknown]. CodeFor never fails.
func CodeFor(category Category, condition Condition) Code {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if code, ok := registry.index[classKey{category, condition}]; ok {
		return code
	}
	if code, ok := registry.generic[category]; ok {
		return code
	}
	return CodeUnknown
}

// DefaultSeverityFor returns the default severity of the code that
// [CodeFor] resolves for the pair.
func DefaultSeverityFor(category Category, condition Condition) Severity {
	return CodeFor(category, condition).DefaultSeverity()
}
