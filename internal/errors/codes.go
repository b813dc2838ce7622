package errors

// Error code constants
// Format: CATEGORY_SPECIFIC_DETAIL
// Clients map these codes to their own notification texts

const (
	// ==================== Session (SESSION_) ====================
	SessionRequired     = "SESSION_REQUIRED"      // no session token
	SessionTokenInvalid = "SESSION_TOKEN_INVALID" // bad signature or format
	SessionTokenExpired = "SESSION_TOKEN_EXPIRED" // token expired

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND"

	// ==================== Catalog (CATALOG_) ====================
	CatalogProductNotFound    = "CATALOG_PRODUCT_NOT_FOUND"
	CatalogInvalidVariant     = "CATALOG_INVALID_VARIANT"
	CatalogOutOfStock         = "CATALOG_OUT_OF_STOCK"
	CatalogCollectionNotFound = "CATALOG_COLLECTION_NOT_FOUND"

	// ==================== Cart (CART_) ====================
	CartEmpty            = "CART_EMPTY"
	CartQuantityTooLarge = "CART_QUANTITY_TOO_LARGE" // above the per-line limit

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutInProgress           = "CHECKOUT_IN_PROGRESS"            // a checkout for this session is pending
	CheckoutOrderRejected        = "CHECKOUT_ORDER_REJECTED"         // backend refused the order
	CheckoutOrderUnavailable     = "CHECKOUT_ORDER_UNAVAILABLE"      // backend unreachable
	CheckoutConfirmationNotFound = "CHECKOUT_CONFIRMATION_NOT_FOUND" // nothing stored for this session

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
