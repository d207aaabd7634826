package licensesdk

import "time"

// ============================================================================
// Endpoints
// ============================================================================

const (
	APIBasePath      = "/api/v1"
	APIAdminBasePath = "/api/v1/admin"

	EndpointAuthLogin = "/api/v1/auth/login"

	EndpointLicensesList        = "/api/v1/admin/licenses"
	EndpointLicensesCreate      = "/api/v1/admin/licenses/create"
	EndpointLicensesGet         = "/api/v1/admin/licenses/%s"
	EndpointLicensesUpdate      = "/api/v1/admin/licenses/%s"
	EndpointLicensesSuspend     = "/api/v1/admin/licenses/%s/suspend"
	EndpointLicensesResume      = "/api/v1/admin/licenses/%s/resume"
	EndpointLicensesFreeze      = "/api/v1/admin/licenses/%s/freeze"
	EndpointLicensesRevoke      = "/api/v1/admin/licenses/%s"
	EndpointLicensesActivations = "/api/v1/admin/licenses/%s/activations"

	EndpointProductsList = "/api/v1/admin/products"
	EndpointProductsGet  = "/api/v1/admin/products/%s"
)

// ============================================================================
// License and activation status values
// ============================================================================

const (
	LicenseStatusActive    = "ACTIVE"
	LicenseStatusInactive  = "INACTIVE"
	LicenseStatusExpired   = "EXPIRED"
	LicenseStatusRevoked   = "REVOKED"
	LicenseStatusSuspended = "SUSPENDED"

	ActivationStatusActive    = "ACTIVE"
	ActivationStatusInactive  = "INACTIVE"
	ActivationStatusSuspended = "SUSPENDED"
)

// ============================================================================
// Error codes returned by the license service
// ============================================================================

const (
	ErrorCodeInvalidFormat           = "INVALID_FORMAT"
	ErrorCodeInvalidLicenseFormat    = "INVALID_LICENSE_FORMAT"
	ErrorCodeLicenseNotFound         = "LICENSE_NOT_FOUND"
	ErrorCodeLicenseInactive         = "LICENSE_INACTIVE"
	ErrorCodeLicenseExpired          = "LICENSE_EXPIRED"
	ErrorCodeActivationLimitExceeded = "ACTIVATION_LIMIT_EXCEEDED"
	ErrorCodeNotActivatedOnDomain    = "NOT_ACTIVATED_ON_DOMAIN"
	ErrorCodeDemoModeMismatch        = "DEMO_MODE_MISMATCH"
	ErrorCodeValidationError         = "VALIDATION_ERROR"
	ErrorCodeBodyValidationError     = "BODY_VALIDATION_ERROR"
	ErrorCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	ErrorCodeMustChangePassword      = "MUST_CHANGE_PASSWORD"
	ErrorCodeMissingToken            = "MISSING_TOKEN"
	ErrorCodeInvalidToken            = "INVALID_TOKEN"
	ErrorCodeUnauthorized            = "UNAUTHORIZED"
	ErrorCodeEntitlementsFrozen      = "ENTITLEMENTS_FROZEN"
	ErrorCodeTierFrozen              = "TIER_FROZEN"
	ErrorCodeLicenseSuspended        = "LICENSE_SUSPENDED"
	ErrorCodeProductSuspended        = "PRODUCT_SUSPENDED"
	ErrorCodeAccountLocked           = "ACCOUNT_LOCKED"
	ErrorCodeTooManyAttempts         = "TOO_MANY_ATTEMPTS"
	ErrorCodeAuthenticationError     = "AUTHENTICATION_ERROR"
)

// ============================================================================
// Wire keys and headers
// ============================================================================

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-ID"
	BearerPrefix        = "Bearer "

	ContentTypeJSON = "application/json"

	keyToken     = "token"
	keyExpiresIn = "expires_in"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)
