package feedback

// Tier is the semantic label for a numeric score. One canonical
// threshold set is used everywhere a score is turned into a label.
type Tier string

const (
	TierOptimal    Tier = "optimal"
	TierSubOptimal Tier = "sub-optimal"
	TierCritical   Tier = "critical"
)

func Classify(score int) Tier {
	switch {
	case score > 69:
		return TierOptimal
	case score > 49:
		return TierSubOptimal
	default:
		return TierCritical
	}
}
