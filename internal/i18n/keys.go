// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductNotFound = "product.not_found"

	// Lookup
	KeyLookupNotFound = "lookup.not_found"

	// Scan sessions
	KeyScanSessionNotFound = "scan.session_not_found"
	KeyScanSessionClosed   = "scan.session_closed"
)
