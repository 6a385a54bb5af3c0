// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Users
	KeyUserNotFound  = "user.not_found"
	KeyUserSuspended = "user.suspended"

	// Cells
	KeyCellNotFound     = "cell.not_found"
	KeyCellOutOfBounds  = "cell.out_of_bounds"
	KeyCellAlreadyOwner = "cell.already_owner"
	KeyCellNotOwner     = "cell.not_owner"
	KeyCellConflict     = "cell.conflict"
	KeyCellPurchased    = "cell.purchased"
	KeyCellArtworkSaved = "cell.artwork_saved"

	// Payments
	KeyPaymentSuccess  = "payment.success"
	KeyPaymentFailed   = "payment.failed"
	KeyPaymentRequired = "payment.required"

	// Store
	KeyStoreUnavailable = "store.unavailable"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
)
