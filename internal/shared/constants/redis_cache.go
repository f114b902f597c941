package constants

// Redis key layout for the reservation service.
// Pattern: movitex:{module}:{identifier}:{name}

const (
	CACHE_PREFIX = "movitex"
)

// ================== RESERVATION SESSION (per browser tab) ==================

const (
	// Consolidated record
	SESSION_KEY_RESERVATION = "reservation_session"

	// Legacy fragmented layout, read once for migration
	SESSION_KEY_LEGACY_TRIP           = "reservation_trip"
	SESSION_KEY_LEGACY_TIMER_START    = "reservation_timer_start"
	SESSION_KEY_LEGACY_TIMER_DEADLINE = "reservation_timer_deadline"
	SESSION_KEY_LEGACY_FORMS          = "reservation_forms"
)

// LegacySessionKeys lists every legacy key name in read order
var LegacySessionKeys = []string{
	SESSION_KEY_LEGACY_TRIP,
	SESSION_KEY_LEGACY_TIMER_START,
	SESSION_KEY_LEGACY_TIMER_DEADLINE,
	SESSION_KEY_LEGACY_FORMS,
}

// BuildTabKey scopes a session key to one browser tab
func BuildTabKey(tabID, name string) string {
	return CACHE_PREFIX + ":tab:" + tabID + ":" + name
}

// ================== LOOKUP / PROFILE CACHES ==================

const (
	CACHE_KEY_DOCUMENT_LOOKUP = CACHE_PREFIX + ":doclookup:dni:" // + document number
	CACHE_KEY_USER_PROFILE    = CACHE_PREFIX + ":profile:user:"  // + user id
)

func BuildDocumentLookupKey(documentNumber string) string {
	return CACHE_KEY_DOCUMENT_LOOKUP + documentNumber
}

func BuildUserProfileKey(userID string) string {
	return CACHE_KEY_USER_PROFILE + userID
}

// ================== RATE LIMITING ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + client ip + ":" + limit type
)
