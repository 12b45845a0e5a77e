package domain

// Tier buckets a channel by subscriber count.
type Tier string

const (
	TierUnknown   Tier = "unknown"
	TierTooSmall  Tier = "too_small"
	TierSmall     Tier = "small"
	TierSweetSpot Tier = "sweet_spot"
	TierBig       Tier = "big"
)

// TierThresholds are the subscriber-count cutoffs between tiers.
type TierThresholds struct {
	TooSmallBelow  int64
	SmallBelow     int64
	SweetSpotBelow int64
}

// DefaultTierThresholds: <5k too small, <100k small, <1M sweet spot, else big.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{
		TooSmallBelow:  5_000,
		SmallBelow:     100_000,
		SweetSpotBelow: 1_000_000,
	}
}

// ClassifyTier maps a subscriber count to its tier. A nil count means the
// enrichment lookup never resolved; those channels pass through as unknown
// so the qualifier can decide.
func ClassifyTier(count *int64, t TierThresholds) Tier {
	switch {
	case count == nil:
		return TierUnknown
	case *count < t.TooSmallBelow:
		return TierTooSmall
	case *count < t.SmallBelow:
		return TierSmall
	case *count < t.SweetSpotBelow:
		return TierSweetSpot
	default:
		return TierBig
	}
}
