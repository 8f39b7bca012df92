// Package apperr defines the closed error taxonomy for the resilience layer
// and the structured error type built on top of it. Every failure that moves
// between components is classified into one of the catalog kinds; retry,
// redirect, and recovery policy live in the catalog data rather than in
// conditionals at call sites.
package apperr

// Severity ranks how bad a failure is for the user.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category groups failures by the subsystem that produced them.
type Category string

const (
	CategoryAuth       Category = "auth"
	CategoryValidation Category = "validation"
	CategoryNetwork    Category = "network"
	CategoryDatabase   Category = "database"
	CategoryPayment    Category = "payment"
	CategoryService    Category = "service"
	CategoryBooking    Category = "booking"
	CategoryUser       Category = "user"
	CategorySystem     Category = "system"
)

// Kind is one entry of the closed catalog. Kinds are defined once at process
// start and never mutated.
type Kind struct {
	Code           string
	HTTPStatus     int
	Severity       Severity
	Category       Category
	Retryable      bool
	RedirectTo     string
	RecoverySteps  []string
	DefaultMessage string
}

// Catalog codes.
const (
	CodeAuthRequired    = "AUTH_REQUIRED"
	CodeAuthInvalid     = "AUTH_INVALID"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNetwork         = "NETWORK_ERROR"
	CodeDatabase        = "DB_ERROR"
	CodePaymentFailed   = "PAYMENT_FAILED"
	CodeServiceNotFound = "SERVICE_NOT_FOUND"
	CodeBookingConflict = "BOOKING_CONFLICT"
	CodeRateLimit       = "RATE_LIMIT"
	CodeStorage         = "STORAGE_ERROR"
	CodeUnknown         = "UNKNOWN_ERROR"
)

var catalog = map[string]Kind{
	CodeAuthRequired: {
		Code:           CodeAuthRequired,
		HTTPStatus:     401,
		Severity:       SeverityError,
		Category:       CategoryAuth,
		RedirectTo:     "/sign-in",
		DefaultMessage: "You need to sign in to continue",
	},
	CodeAuthInvalid: {
		Code:           CodeAuthInvalid,
		HTTPStatus:     401,
		Severity:       SeverityError,
		Category:       CategoryAuth,
		Retryable:      true,
		DefaultMessage: "Your session is no longer valid",
	},
	CodeValidation: {
		Code:           CodeValidation,
		HTTPStatus:     400,
		Severity:       SeverityWarning,
		Category:       CategoryValidation,
		Retryable:      true,
		DefaultMessage: "Some fields are invalid",
	},
	CodeNetwork: {
		Code:       CodeNetwork,
		HTTPStatus: 503,
		Severity:   SeverityError,
		Category:   CategoryNetwork,
		Retryable:  true,
		RecoverySteps: []string{
			"Check your internet connection",
			"Try refreshing the page",
			"Contact support if the problem persists",
		},
		DefaultMessage: "Could not reach the server",
	},
	CodeDatabase: {
		Code:           CodeDatabase,
		HTTPStatus:     500,
		Severity:       SeverityError,
		Category:       CategoryDatabase,
		DefaultMessage: "Something went wrong on our side",
	},
	CodePaymentFailed: {
		Code:       CodePaymentFailed,
		HTTPStatus: 402,
		Severity:   SeverityError,
		Category:   CategoryPayment,
		Retryable:  true,
		RecoverySteps: []string{
			"Check your payment details",
			"Ensure sufficient funds",
			"Try a different payment method",
		},
		DefaultMessage: "Payment could not be processed",
	},
	CodeServiceNotFound: {
		Code:           CodeServiceNotFound,
		HTTPStatus:     404,
		Severity:       SeverityError,
		Category:       CategoryService,
		RedirectTo:     "/services",
		DefaultMessage: "That service no longer exists",
	},
	CodeBookingConflict: {
		Code:       CodeBookingConflict,
		HTTPStatus: 409,
		Severity:   SeverityWarning,
		Category:   CategoryBooking,
		Retryable:  true,
		RecoverySteps: []string{
			"Choose a different time slot",
			"Contact the service provider",
		},
		DefaultMessage: "That time slot is already taken",
	},
	CodeRateLimit: {
		Code:       CodeRateLimit,
		HTTPStatus: 429,
		Severity:   SeverityWarning,
		Category:   CategorySystem,
		Retryable:  true,
		RecoverySteps: []string{
			"Please wait before trying again",
			"Contact support if you need immediate assistance",
		},
		DefaultMessage: "Too many requests, slow down",
	},
	CodeStorage: {
		Code:           CodeStorage,
		HTTPStatus:     507,
		Severity:       SeverityWarning,
		Category:       CategoryDatabase,
		Retryable:      true,
		DefaultMessage: "Local storage is unavailable",
	},
	CodeUnknown: {
		Code:           CodeUnknown,
		HTTPStatus:     500,
		Severity:       SeverityError,
		Category:       CategorySystem,
		DefaultMessage: "An unexpected error occurred",
	},
}

// Classify returns the catalog kind for a code. The lookup is total: an
// unknown code maps to the UNKNOWN_ERROR kind instead of failing, since a
// bad code is itself a caller bug.
func Classify(code string) Kind {
	if k, ok := catalog[code]; ok {
		return k
	}
	return catalog[CodeUnknown]
}

// Codes returns every code in the catalog. Intended for diagnostics and
// exhaustiveness tests.
func Codes() []string {
	codes := make([]string, 0, len(catalog))
	for c := range catalog {
		codes = append(codes, c)
	}
	return codes
}
