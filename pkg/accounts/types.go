package accounts

import (
	"fmt"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// PlanTier is an ordered subscription level. Higher tiers carry higher
// quota ceilings and a larger enabled-provider set.
type PlanTier int

// Plan tiers, ordered Free < Starter < Pro < Team.
const (
	TierFree PlanTier = iota
	TierStarter
	TierPro
	TierTeam
)

// String returns the tier's lowercase name.
func (t PlanTier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierStarter:
		return "starter"
	case TierPro:
		return "pro"
	case TierTeam:
		return "team"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier parses a tier name as it appears in the account catalog.
func ParseTier(s string) (PlanTier, error) {
	switch s {
	case "free":
		return TierFree, nil
	case "starter":
		return TierStarter, nil
	case "pro":
		return TierPro, nil
	case "team":
		return TierTeam, nil
	default:
		return 0, fmt.Errorf("unknown plan tier %q", s)
	}
}

// Account is the identity owning quota and requests. The gateway only
// reads accounts; provisioning and tier changes happen in the external
// account-management system. An Account value is immutable for the
// duration of a request.
type Account struct {
	// ID is the unique account identifier
	ID string

	// Tier is the subscription level
	Tier PlanTier

	// MonthlyCeiling is the monthly request ceiling
	MonthlyCeiling int64

	// PerMinuteCeiling is the rolling per-minute request ceiling
	PerMinuteCeiling int64

	// EnabledProviders is the set of providers this account may use
	EnabledProviders map[string]bool
}

// ProviderEnabled reports whether the account's tier enables a provider.
func (a *Account) ProviderEnabled(provider string) bool {
	return a.EnabledProviders[provider]
}

// tierDefaults holds the per-tier ceilings and provider sets.
// Catalog entries may override the ceilings per account.
var tierDefaults = map[PlanTier]struct {
	monthly   int64
	perMinute int64
	providers []string
}{
	TierFree: {
		monthly:   200,
		perMinute: 5,
		providers: []string{providers.ProviderOpenAI},
	},
	TierStarter: {
		monthly:   10000,
		perMinute: 60,
		providers: []string{
			providers.ProviderOpenAI,
			providers.ProviderAnthropic,
			providers.ProviderGoogle,
		},
	},
	TierPro: {
		monthly:   100000,
		perMinute: 300,
		providers: []string{
			providers.ProviderOpenAI,
			providers.ProviderAnthropic,
			providers.ProviderGoogle,
			providers.ProviderQwen,
		},
	},
	TierTeam: {
		monthly:   1000000,
		perMinute: 1000,
		providers: []string{
			providers.ProviderOpenAI,
			providers.ProviderAnthropic,
			providers.ProviderGoogle,
			providers.ProviderQwen,
		},
	},
}

// NewAccount builds an account with its tier's default ceilings and
// provider set.
func NewAccount(id string, tier PlanTier) *Account {
	defaults := tierDefaults[tier]

	enabled := make(map[string]bool, len(defaults.providers))
	for _, p := range defaults.providers {
		enabled[p] = true
	}

	return &Account{
		ID:               id,
		Tier:             tier,
		MonthlyCeiling:   defaults.monthly,
		PerMinuteCeiling: defaults.perMinute,
		EnabledProviders: enabled,
	}
}
