package domain

// Tier is the membership tier derived from a directory lookup.
type Tier string

const (
	TierUnregistered Tier = "unregistered"
	TierInactive     Tier = "inactive"
	TierActive       Tier = "active"
)

// BaselineLevel is the sub-level assumed for active members whose record has
// no level.
const BaselineLevel = "Básico"

// Classification is the outcome of classifying one directory lookup.
type Classification struct {
	Tier   Tier
	Level  string
	Record Record
}
