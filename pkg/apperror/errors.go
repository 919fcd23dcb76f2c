package apperror

import (
	"fmt"
	"net/http"
)

// Severity classifies how an error must be surfaced operationally.
type Severity int

const (
	// SeverityError is the normal severity for reportable failures.
	SeverityError Severity = iota
	// SeverityCritical marks faults implying silent balance corruption risk,
	// such as a failed saga compensation. These must never be reported as an
	// ordinary dependency failure.
	SeverityCritical
)

// AppError is a structured error that maps to HTTP responses.
// Code is the machine-readable tag returned to the client.
type AppError struct {
	Code       string   `json:"error"`
	Message    string   `json:"message"`
	HTTPStatus int      `json:"-"`
	Severity   Severity `json:"-"`
	Err        error    `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication (always 403, undifferentiated cause) ----

// ErrAccessDeniedInitData covers every initData verification failure.
// Missing hash, malformed payload, JSON errors and hash mismatch all collapse
// into this one outcome so callers cannot probe which check failed.
func ErrAccessDeniedInitData() *AppError {
	return New("access_denied_initdata", "Access denied", http.StatusForbidden)
}

func ErrAccessDeniedUser() *AppError {
	return New("access_denied_user", "Access denied", http.StatusForbidden)
}

func ErrAdminOnly() *AppError {
	return New("admin_only", "Admin privileges required", http.StatusForbidden)
}

// ---- Validation (400, caller-correctable) ----

func ErrAmountMinOne() *AppError {
	return New("amount_min_1", "Amount must be at least 1", http.StatusBadRequest)
}

func ErrAmountInvalid() *AppError {
	return New("amount_invalid", "Amount must be positive", http.StatusBadRequest)
}

// Validation returns a generic request validation error.
func Validation(message string) *AppError {
	return New("validation_failed", message, http.StatusBadRequest)
}

// ---- Domain conflicts (400, recoverable with different input) ----

func ErrLotNotActive() *AppError {
	return New("lot_not_active", "Lot is not active", http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("insufficient_balance", "Insufficient balance", http.StatusBadRequest)
}

func ErrAlreadyParticipated() *AppError {
	return New("already_participated", "Participation already reserved for this lot", http.StatusBadRequest)
}

func ErrLotPriceInvalid() *AppError {
	return New("lot_price_invalid", "Lot has no valid participation price", http.StatusBadRequest)
}

// ---- Not found (404) ----

func ErrLotNotFound() *AppError {
	return New("lot_not_found", "Lot not found", http.StatusNotFound)
}

func ErrTargetNotFound() *AppError {
	return New("target_not_found", "Target user not found", http.StatusNotFound)
}

// ---- Dependency failures (500) ----

func ErrDonationInsertFailed(err error) *AppError {
	return Wrap("donation_insert_failed", "Failed to record donation", http.StatusInternalServerError, err)
}

func ErrParticipationInsertFailed(err error) *AppError {
	return Wrap("participation_insert_failed", "Failed to reserve participation", http.StatusInternalServerError, err)
}

func ErrLedgerWriteFailed(err error) *AppError {
	return Wrap("ledger_write_failed", "Failed to write ledger entry", http.StatusInternalServerError, err)
}

func ErrBalanceUpdateFailed(err error) *AppError {
	return Wrap("balance_update_failed", "Failed to update balance", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a generic dependency failure.
func InternalError(err error) *AppError {
	return Wrap("internal_error", "Internal server error", http.StatusInternalServerError, err)
}

// ---- Compensation failure (critical) ----

// ErrCompensationFailed reports that a compensating write itself failed after
// a partial operation, leaving an un-recovered balance short.
func ErrCompensationFailed(err error) *AppError {
	e := Wrap("compensation_failed", "Operation failed and compensation could not be applied", http.StatusInternalServerError, err)
	e.Severity = SeverityCritical
	return e
}
