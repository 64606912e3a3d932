package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition carries a stable business error code with its default message.
type Definition struct {
	Code    string
	Message string
}

// Auth errors.
var (
	Unauthorized   = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidAdminID = Definition{Code: "INVALID_ADMIN_ID", Message: "Invalid admin ID format"}
)

// Automation task errors.
var (
	TaskNotFound       = Definition{Code: "TASK_NOT_FOUND", Message: "Automation task not found"}
	TaskNotCancellable = Definition{Code: "TASK_NOT_CANCELLABLE", Message: "Task is no longer pending"}
	TaskTypeInvalid    = Definition{Code: "TASK_TYPE_INVALID", Message: "Unknown task type"}
	TaskDuplicate      = Definition{Code: "TASK_DUPLICATE", Message: "Equivalent pending task already exists"}
)

// Contract store errors.
var (
	CustomerNotFound = Definition{Code: "CUSTOMER_NOT_FOUND", Message: "Customer not found"}
	ProjectNotFound  = Definition{Code: "PROJECT_NOT_FOUND", Message: "Project not found"}
)

// Job trigger errors.
var (
	JobAlreadyRunning = Definition{Code: "JOB_ALREADY_RUNNING", Message: "Job run already in progress"}
)

// Lookup provides error code resolution for the API layer.
var Lookup = map[string]Definition{
	Unauthorized.Code:       Unauthorized,
	InvalidAdminID.Code:     InvalidAdminID,
	TaskNotFound.Code:       TaskNotFound,
	TaskNotCancellable.Code: TaskNotCancellable,
	TaskTypeInvalid.Code:    TaskTypeInvalid,
	TaskDuplicate.Code:      TaskDuplicate,
	CustomerNotFound.Code:   CustomerNotFound,
	ProjectNotFound.Code:    ProjectNotFound,
	JobAlreadyRunning.Code:  JobAlreadyRunning,
}

// Get returns the Definition for a code, or a generic one when unknown.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// Sentinel errors shared across packages.
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected token signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrAdminIDNotFound              = errors.New("admin id not found in token")
)
