package pii

// Field names recognized by the batch orchestrator. The set is fixed at
// design time; routing never inspects the data itself.
const (
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldGender      = "gender"
	FieldDateOfBirth = "date_of_birth"
	FieldExternalID  = "external_id"

	FieldCity    = "city"
	FieldState   = "state"
	FieldZip     = "zip_code"
	FieldCountry = "country"

	FieldIPAddress      = "ip_address"
	FieldUserAgent      = "user_agent"
	FieldSubscriptionID = "subscription_id"
	FieldLeadID         = "lead_id"
	FieldAnonymousID    = "anonymous_id"
	FieldTraits         = "traits"
)

// FieldClass partitions the recognized field names into the three routing
// classes the orchestrator applies.
type FieldClass int

const (
	// AlwaysHash fields are normalized then digested unconditionally.
	AlwaysHash FieldClass = iota
	// ConditionalHash fields are digested only when Config.HashAddressFields
	// is set; otherwise they stay normalized plain text.
	ConditionalHash
	// Passthrough fields are copied verbatim, never normalized or hashed.
	Passthrough
)

// fieldClasses is the static routing table. Every recognized field belongs to
// exactly one class; names not present here are dropped by the orchestrator
// so nothing unvetted reaches the downstream platform.
var fieldClasses = map[string]FieldClass{
	FieldEmail:       AlwaysHash,
	FieldPhone:       AlwaysHash,
	FieldFirstName:   AlwaysHash,
	FieldLastName:    AlwaysHash,
	FieldGender:      AlwaysHash,
	FieldDateOfBirth: AlwaysHash,
	FieldExternalID:  AlwaysHash,

	FieldCity:    ConditionalHash,
	FieldState:   ConditionalHash,
	FieldZip:     ConditionalHash,
	FieldCountry: ConditionalHash,

	FieldIPAddress:      Passthrough,
	FieldUserAgent:      Passthrough,
	FieldSubscriptionID: Passthrough,
	FieldLeadID:         Passthrough,
	FieldAnonymousID:    Passthrough,
	FieldTraits:         Passthrough,
}

// ClassOf reports the routing class for a field name and whether the name is
// recognized at all.
func ClassOf(field string) (FieldClass, bool) {
	class, ok := fieldClasses[field]
	return class, ok
}

// Fields returns the recognized field names in no particular order. Intended
// for audits and table-driven tests of the routing decision.
func Fields() []string {
	names := make([]string, 0, len(fieldClasses))
	for name := range fieldClasses {
		names = append(names, name)
	}
	return names
}
