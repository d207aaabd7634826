package licensesdk

// License is an immutable projection of a license returned by the service.
// A new License is always decoded from a fresh payload; it is never mutated.
type License struct {
	LicenseKey      string
	Status          string
	CustomerEmail   *string
	TierCode        *string
	Domain          *string
	ActivationLimit *int
	ActivationCount *int
	ExpiresAt       *string // ISO-8601
	Features        map[string]any
	ID              *int
	CreatedAt       *string // ISO-8601
	UpdatedAt       *string // ISO-8601
}

var (
	licenseKeyKeys      = keys{"license_key", "licenseKey"}
	licenseStatusKeys   = keys{"status"}
	customerEmailKeys   = keys{"customer_email", "customerEmail"}
	tierCodeKeys        = keys{"tier_code", "tierCode"}
	domainKeys          = keys{"domain"}
	activationLimitKeys = keys{"activation_limit", "activationLimit"}
	activationCountKeys = keys{"activation_count", "activationCount"}
	expiresAtKeys       = keys{"expires_at", "expiresAt"}
	featuresKeys        = keys{"features"}
	idKeys              = keys{"id"}
	createdAtKeys       = keys{"created_at", "createdAt"}
	updatedAtKeys       = keys{"updated_at", "updatedAt"}
)

// DecodeLicense maps a loosely-typed object onto a License. It never fails:
// missing required strings become "", missing optional fields stay nil.
func DecodeLicense(obj map[string]any) License {
	return License{
		LicenseKey:      licenseKeyKeys.str(obj),
		Status:          licenseStatusKeys.str(obj),
		CustomerEmail:   customerEmailKeys.optStr(obj),
		TierCode:        tierCodeKeys.optStr(obj),
		Domain:          domainKeys.optStr(obj),
		ActivationLimit: activationLimitKeys.optInt(obj),
		ActivationCount: activationCountKeys.optInt(obj),
		ExpiresAt:       expiresAtKeys.optStr(obj),
		Features:        featuresKeys.object(obj),
		ID:              idKeys.optInt(obj),
		CreatedAt:       createdAtKeys.optStr(obj),
		UpdatedAt:       updatedAtKeys.optStr(obj),
	}
}

// Encode returns the snake_case wire shape of the license.
func (l License) Encode() map[string]any {
	obj := map[string]any{
		"license_key": l.LicenseKey,
		"status":      l.Status,
	}
	putOptStr(obj, "customer_email", l.CustomerEmail)
	putOptStr(obj, "tier_code", l.TierCode)
	putOptStr(obj, "domain", l.Domain)
	putOptInt(obj, "activation_limit", l.ActivationLimit)
	putOptInt(obj, "activation_count", l.ActivationCount)
	putOptStr(obj, "expires_at", l.ExpiresAt)
	obj["features"] = nil
	if l.Features != nil {
		obj["features"] = l.Features
	}
	putOptInt(obj, "id", l.ID)
	putOptStr(obj, "created_at", l.CreatedAt)
	putOptStr(obj, "updated_at", l.UpdatedAt)
	return obj
}

// IDOrKey returns the identifier preferred by the admin API for path
// parameters: the numeric id when known, the license key otherwise.
func (l License) IDOrKey() string {
	if l.ID != nil {
		s, _ := asString(*l.ID)
		return s
	}
	return l.LicenseKey
}

// Activation is a single site activation of a license.
type Activation struct {
	ID          *int
	Domain      string
	SiteName    *string
	Status      string
	ActivatedAt *string
	LastSeenAt  *string
}

var (
	siteNameKeys    = keys{"site_name", "siteName"}
	activatedAtKeys = keys{"activated_at", "activatedAt"}
	lastSeenAtKeys  = keys{"last_seen_at", "lastSeenAt"}
)

// DecodeActivation maps a loosely-typed object onto an Activation.
func DecodeActivation(obj map[string]any) Activation {
	return Activation{
		ID:          idKeys.optInt(obj),
		Domain:      domainKeys.str(obj),
		SiteName:    siteNameKeys.optStr(obj),
		Status:      licenseStatusKeys.str(obj),
		ActivatedAt: activatedAtKeys.optStr(obj),
		LastSeenAt:  lastSeenAtKeys.optStr(obj),
	}
}

// Encode returns the snake_case wire shape of the activation.
func (a Activation) Encode() map[string]any {
	obj := map[string]any{
		"domain": a.Domain,
		"status": a.Status,
	}
	putOptInt(obj, "id", a.ID)
	putOptStr(obj, "site_name", a.SiteName)
	putOptStr(obj, "activated_at", a.ActivatedAt)
	putOptStr(obj, "last_seen_at", a.LastSeenAt)
	return obj
}
