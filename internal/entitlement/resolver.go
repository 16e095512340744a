// Package entitlement derives feature access from an identity's plan tier.
package entitlement

import "github.com/e-ration/eration/internal/directory"

// Entitlement is the access granted to an identity.
type Entitlement struct {
	Tier              directory.Tier `json:"tier"`
	HasElevatedAccess bool           `json:"has_elevated_access"`
}

// Resolve maps a record's tier to its entitlement. Only premium grants
// elevated (internet) access; unknown tiers are treated as basic.
func Resolve(rec directory.Record) Entitlement {
	return ForTier(rec.Tier)
}

// ForTier is Resolve for callers that only hold a tier.
func ForTier(tier directory.Tier) Entitlement {
	if !tier.Valid() {
		tier = directory.TierBasic
	}
	return Entitlement{Tier: tier, HasElevatedAccess: tier == directory.TierPremium}
}
