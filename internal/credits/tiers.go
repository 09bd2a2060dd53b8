package credits

// Subscription tiers.
const (
	TierStarter = "starter"
	TierPro     = "pro"
	TierMax     = "max"
)

// Tier describes what a subscription level grants.
type Tier struct {
	Name            string   `json:"name"`
	MonthlyPriceUSD int      `json:"monthlyPrice"`
	CreditsPerMonth int      `json:"creditsPerMonth"`
	AllowedModels   []string `json:"allowedModels"`
	MaxDuration     int      `json:"maxDuration"`
}

var tiers = map[string]Tier{
	TierStarter: {
		Name:            TierStarter,
		MonthlyPriceUSD: 29,
		CreditsPerMonth: 15,
		AllowedModels:   []string{ModelSora2},
		MaxDuration:     12,
	},
	TierPro: {
		Name:            TierPro,
		MonthlyPriceUSD: 79,
		CreditsPerMonth: 40,
		AllowedModels:   []string{ModelSora2, ModelSora2Pro},
		MaxDuration:     12,
	},
	TierMax: {
		Name:            TierMax,
		MonthlyPriceUSD: 199,
		CreditsPerMonth: 80,
		AllowedModels:   []string{ModelSora2, ModelSora2Pro},
		MaxDuration:     12,
	},
}

// LookupTier returns the tier definition by name.
func LookupTier(name string) (Tier, bool) {
	t, ok := tiers[name]
	if !ok {
		return Tier{}, false
	}
	t.AllowedModels = append([]string(nil), t.AllowedModels...)
	return t, true
}

// ValidTier reports whether name is a known tier.
func ValidTier(name string) bool {
	_, ok := tiers[name]
	return ok
}

// TierAllows reports whether the tier may generate with model.
func TierAllows(tier, model string) bool {
	t, ok := tiers[tier]
	if !ok {
		return false
	}
	for _, m := range t.AllowedModels {
		if m == model {
			return true
		}
	}
	return false
}

// StarterCredits is the balance granted to a newly created user.
func StarterCredits() int {
	return tiers[TierStarter].CreditsPerMonth
}
