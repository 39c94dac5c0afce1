// Package consent defines the consent-domain entity schemas and the
// baseline purpose seeding performed on first run.
package consent

import (
	"time"

	"github.com/consentbase/consentdb/pkg/types"
)

// Entity names used across the platform.
const (
	EntitySubject       = "subject"
	EntityDomain        = "domain"
	EntityPurpose       = "consentPurpose"
	EntityPolicy        = "consentPolicy"
	EntityConsent       = "consent"
	EntityConsentRecord = "consentRecord"
	EntityAuditLog      = "auditLog"
)

// Consent status values.
const (
	StatusActive    = "active"
	StatusWithdrawn = "withdrawn"
	StatusExpired   = "expired"
)

func now() any { return time.Now().UTC() }

// Schemas returns the full entity schema map. Loaded once at adapter
// construction time; never mutated afterward.
func Schemas() types.SchemaMap {
	return types.SchemaMap{
		EntitySubject: {
			EntityName:  EntitySubject,
			StorageName: "subjects",
			Prefix:      "sub",
			Fields: []types.Field{
				{Name: "isIdentified", StorageName: "is_identified", Type: types.FieldBoolean, DefaultValue: false},
				{Name: "externalId", StorageName: "external_id", Type: types.FieldString},
				{Name: "identityProvider", StorageName: "identity_provider", Type: types.FieldString},
				{Name: "lastIpAddress", StorageName: "last_ip_address", Type: types.FieldString},
				{Name: "subjectTimezone", StorageName: "subject_timezone", Type: types.FieldString},
				{Name: "createdAt", StorageName: "created_at", Type: types.FieldDate, DefaultFunc: now},
				{Name: "updatedAt", StorageName: "updated_at", Type: types.FieldDate, DefaultFunc: now},
			},
		},
		EntityDomain: {
			EntityName:  EntityDomain,
			StorageName: "domains",
			Prefix:      "dom",
			Fields: []types.Field{
				{Name: "name", Type: types.FieldString, Required: true},
				{Name: "description", Type: types.FieldString},
				{Name: "allowedOrigins", StorageName: "allowed_origins", Type: types.FieldJSON},
				{Name: "isVerified", StorageName: "is_verified", Type: types.FieldBoolean, DefaultValue: false},
				{Name: "isActive", StorageName: "is_active", Type: types.FieldBoolean, DefaultValue: true},
				{Name: "createdAt", StorageName: "created_at", Type: types.FieldDate, DefaultFunc: now},
				{Name: "updatedAt", StorageName: "updated_at", Type: types.FieldDate, DefaultFunc: now},
			},
		},
		EntityPurpose: {
			EntityName:  EntityPurpose,
			StorageName: "consent_purposes",
			Prefix:      "pur",
			Fields: []types.Field{
				{Name: "code", Type: types.FieldString, Required: true},
				{Name: "name", Type: types.FieldString, Required: true},
				{Name: "description", Type: types.FieldString},
				{Name: "isEssential", StorageName: "is_essential", Type: types.FieldBoolean, DefaultValue: false},
				{Name: "dataCategory", StorageName: "data_category", Type: types.FieldString},
				{Name: "legalBasis", StorageName: "legal_basis", Type: types.FieldString},
				{Name: "isActive", StorageName: "is_active", Type: types.FieldBoolean, DefaultValue: true},
				{Name: "createdAt", StorageName: "created_at", Type: types.FieldDate, DefaultFunc: now},
				{Name: "updatedAt", StorageName: "updated_at", Type: types.FieldDate, DefaultFunc: now},
			},
		},
		EntityPolicy: {
			EntityName:  EntityPolicy,
			StorageName: "consent_policies",
			Prefix:      "pol",
			Fields: []types.Field{
				{Name: "version", Type: types.FieldString, Required: true},
				{Name: "type", Type: types.FieldString, DefaultValue: "privacy_policy"},
				{Name: "name", Type: types.FieldString, Required: true},
				{Name: "effectiveDate", StorageName: "effective_date", Type: types.FieldDate, DefaultFunc: now},
				{Name: "expirationDate", StorageName: "expiration_date", Type: types.FieldDate},
				{Name: "content", Type: types.FieldString},
				{Name: "contentHash", StorageName: "content_hash", Type: types.FieldString},
				{Name: "isActive", StorageName: "is_active", Type: types.FieldBoolean, DefaultValue: true},
				{Name: "createdAt", StorageName: "created_at", Type: types.FieldDate, DefaultFunc: now},
			},
		},
		EntityConsent: {
			EntityName:  EntityConsent,
			StorageName: "consents",
			Prefix:      "cns",
			Fields: []types.Field{
				{Name: "subjectId", StorageName: "subject_id", Type: types.FieldString, Required: true},
				{Name: "domainId", StorageName: "domain_id", Type: types.FieldString, Required: true},
				{Name: "purposeIds", StorageName: "purpose_ids", Type: types.FieldJSON},
				{Name: "policyId", StorageName: "policy_id", Type: types.FieldString},
				{Name: "status", Type: types.FieldString, DefaultValue: StatusActive},
				{Name: "withdrawalReason", StorageName: "withdrawal_reason", Type: types.FieldString},
				{Name: "metadata", Type: types.FieldJSON},
				{Name: "ipAddress", StorageName: "ip_address", Type: types.FieldString},
				{Name: "userAgent", StorageName: "user_agent", Type: types.FieldString},
				{Name: "givenAt", StorageName: "given_at", Type: types.FieldDate, DefaultFunc: now},
				{Name: "validUntil", StorageName: "valid_until", Type: types.FieldDate},
				{Name: "isActive", StorageName: "is_active", Type: types.FieldBoolean, DefaultValue: true},
			},
		},
		EntityConsentRecord: {
			EntityName:  EntityConsentRecord,
			StorageName: "consent_records",
			Prefix:      "rec",
			Fields: []types.Field{
				{Name: "subjectId", StorageName: "subject_id", Type: types.FieldString, Required: true},
				{Name: "consentId", StorageName: "consent_id", Type: types.FieldString},
				{Name: "actionType", StorageName: "action_type", Type: types.FieldString, Required: true},
				{Name: "details", Type: types.FieldJSON},
				{Name: "createdAt", StorageName: "created_at", Type: types.FieldDate, DefaultFunc: now},
			},
		},
		EntityAuditLog: {
			EntityName:  EntityAuditLog,
			StorageName: "audit_logs",
			Prefix:      "log",
			Fields: []types.Field{
				{Name: "entityType", StorageName: "entity_type", Type: types.FieldString, Required: true},
				{Name: "entityId", StorageName: "entity_id", Type: types.FieldString, Required: true},
				{Name: "actionType", StorageName: "action_type", Type: types.FieldString, Required: true},
				{Name: "subjectId", StorageName: "subject_id", Type: types.FieldString},
				{Name: "changes", Type: types.FieldJSON},
				{Name: "metadata", Type: types.FieldJSON},
				{Name: "ipAddress", StorageName: "ip_address", Type: types.FieldString},
				{Name: "userAgent", StorageName: "user_agent", Type: types.FieldString},
				{Name: "createdAt", StorageName: "created_at", Type: types.FieldDate, DefaultFunc: now},
			},
		},
	}
}
