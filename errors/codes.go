package errors

// ErrorCode identifies an application error condition
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005

	// Authentication
	ErrorCode_AUTH_INVALID_CREDENTIALS ErrorCode = 2000
	ErrorCode_AUTH_INVALID_TOKEN       ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED       ErrorCode = 2002
	ErrorCode_AUTH_USER_NOT_FOUND      ErrorCode = 2003
	ErrorCode_AUTH_USER_ALREADY_EXISTS ErrorCode = 2004
	ErrorCode_AUTH_PROVIDER_FAILED     ErrorCode = 2005

	// Sessions
	ErrorCode_SESSION_NOT_FOUND  ErrorCode = 3000
	ErrorCode_SESSION_ENDED      ErrorCode = 3001
	ErrorCode_SESSION_NOT_JOINED ErrorCode = 3002
	ErrorCode_OPERATION_PENDING  ErrorCode = 3003

	// Validation (caught before any request is issued)
	ErrorCode_VALIDATION_FAILED ErrorCode = 4000

	// Backend integration
	ErrorCode_NETWORK_FAILED ErrorCode = 5000
	ErrorCode_BACKEND_FAILED ErrorCode = 5001
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                  "OK",
	ErrorCode_INTERNAL:                 "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:         "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:           "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:        "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:          "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_CREDENTIALS: "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_INVALID_TOKEN:       "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:       "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_USER_NOT_FOUND:      "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS: "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_PROVIDER_FAILED:     "AUTH_PROVIDER_FAILED",
	ErrorCode_SESSION_NOT_FOUND:        "SESSION_NOT_FOUND",
	ErrorCode_SESSION_ENDED:            "SESSION_ENDED",
	ErrorCode_SESSION_NOT_JOINED:       "SESSION_NOT_JOINED",
	ErrorCode_OPERATION_PENDING:        "OPERATION_PENDING",
	ErrorCode_VALIDATION_FAILED:        "VALIDATION_FAILED",
	ErrorCode_NETWORK_FAILED:           "NETWORK_FAILED",
	ErrorCode_BACKEND_FAILED:           "BACKEND_FAILED",
}

// String returns the symbolic name of the error code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
