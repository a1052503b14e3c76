package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrLoginDisabled      ErrCode = "LOGIN_DISABLED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"
	ErrSessionMismatch ErrCode = "SESSION_MISMATCH"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrSessionNotFound  ErrCode = "SESSION_NOT_FOUND"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrNothingToReview  ErrCode = "NOTHING_TO_REVIEW"
	ErrQuestionAnswered ErrCode = "QUESTION_ALREADY_ANSWERED"
	ErrQuestionPending  ErrCode = "QUESTION_NOT_ANSWERED"
	ErrSessionFinished  ErrCode = "SESSION_FINISHED"
	ErrSessionRunning   ErrCode = "SESSION_NOT_FINISHED"
	ErrTimeRemaining    ErrCode = "TIME_REMAINING"

	// ─── Import ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrInvalidSheet    ErrCode = "INVALID_QUESTION_SHEET"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect password."
	case ErrLoginDisabled:
		return "Admin login is not configured on this server."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrSessionMismatch:
		return "The token does not belong to this quiz session."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "The resource was modified concurrently. Please retry."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrSessionNotFound:
		return "Quiz session not found or expired."
	case ErrNoQuestions:
		return "No questions match the requested selection."
	case ErrNothingToReview:
		return "Every question was answered correctly. Nothing to review."
	case ErrQuestionAnswered:
		return "The current question has already been answered."
	case ErrQuestionPending:
		return "Answer the current question before moving on."
	case ErrSessionFinished:
		return "This quiz session is already finished."
	case ErrSessionRunning:
		return "This quiz session is still in progress."
	case ErrTimeRemaining:
		return "The current question still has time remaining."

	// ─── Import ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type. Use csv, xlsx, json or yaml."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrInvalidSheet:
		return "The question sheet is missing required columns or is malformed."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
