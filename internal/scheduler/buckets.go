package scheduler

import (
	"fmt"
	"math"
)

// ratingTier is one band of the fixed skill table.
type ratingTier struct {
	Min, Max float64
}

// skillTiers spans the practical rating domain. Ratings outside the table
// fall back to the lowest tier.
var skillTiers = []ratingTier{
	{2.0, 2.5},
	{2.5, 3.0},
	{3.0, 3.5},
	{3.5, 4.0},
	{4.0, 4.5},
	{4.5, 5.0},
	{5.0, 6.0},
}

// defaultMinBucketSize is the smallest viable bucket: one doubles court.
const defaultMinBucketSize = 4

// tierOf returns the index of the tier containing rating.
func tierOf(rating float64) int {
	for i, t := range skillTiers {
		if rating >= t.Min && rating < t.Max {
			return i
		}
	}
	if rating >= skillTiers[len(skillTiers)-1].Max {
		return len(skillTiers) - 1
	}
	return 0
}

// bucket is a group of entities within a compatible rating band.
type bucket struct {
	name     string
	min, max float64
	entities []entity
	mixed    bool // synthetic fallback bucket holding the whole population
}

func (b *bucket) midpoint() float64 {
	return (b.min + b.max) / 2
}

// bucketize partitions entities into rating tiers and bumps undersized tiers
// into their neighbours until every bucket is viable. Deterministic given the
// tier table and a fixed merge order; ties go to the first target found.
func (e *Engine) bucketize(entities []entity, minSize int) []bucket {
	if minSize <= 0 {
		minSize = defaultMinBucketSize
	}

	slots := make([][]entity, len(skillTiers))
	for _, en := range entities {
		i := tierOf(en.rating)
		slots[i] = append(slots[i], en)
	}

	// Pass 1: bump undersized tiers upward into the nearest non-empty tier.
	for i := 0; i < len(slots); i++ {
		if len(slots[i]) == 0 || len(slots[i]) >= minSize {
			continue
		}
		for j := i + 1; j < len(slots); j++ {
			if len(slots[j]) > 0 {
				e.trace.Decision("bucket bump up", "from", skillTiers[i], "to", skillTiers[j], "count", len(slots[i]))
				slots[j] = append(slots[j], slots[i]...)
				slots[i] = nil
				break
			}
		}
	}

	// Pass 2: anything still undersized bumps downward.
	for i := len(slots) - 1; i >= 0; i-- {
		if len(slots[i]) == 0 || len(slots[i]) >= minSize {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if len(slots[j]) > 0 {
				e.trace.Decision("bucket bump down", "from", skillTiers[i], "to", skillTiers[j], "count", len(slots[i]))
				slots[j] = append(slots[j], slots[i]...)
				slots[i] = nil
				break
			}
		}
	}

	var buckets []bucket
	var orphans []entity
	for _, members := range slots {
		if len(members) == 0 {
			continue
		}
		if len(members) < minSize {
			orphans = append(orphans, members...)
			continue
		}
		lo, hi := tierSpan(members)
		buckets = append(buckets, bucket{
			name:     fmt.Sprintf("%.1f-%.1f", skillTiers[lo].Min, skillTiers[hi].Max),
			min:      skillTiers[lo].Min,
			max:      skillTiers[hi].Max,
			entities: members,
		})
	}

	if len(orphans) > 0 {
		if len(buckets) == 0 {
			// Nobody formed a viable tier; play everyone together.
			e.trace.Warn("no viable skill bucket, using mixed bucket", "count", len(entities))
			return []bucket{{name: "mixed", min: skillTiers[0].Min, max: skillTiers[len(skillTiers)-1].Max, entities: entities, mixed: true}}
		}
		for _, o := range orphans {
			best := 0
			bestDist := math.Inf(1)
			for i := range buckets {
				d := math.Abs(buckets[i].midpoint() - o.rating)
				if d < bestDist {
					bestDist = d
					best = i
				}
			}
			e.trace.Warn("orphan entity adopted by nearest bucket", "entity", o.id, "rating", o.rating, "bucket", buckets[best].name)
			buckets[best].entities = append(buckets[best].entities, o)
		}
	}

	return buckets
}

// tierSpan returns the lowest and highest tier indices present in members.
func tierSpan(members []entity) (int, int) {
	lo, hi := len(skillTiers)-1, 0
	for _, m := range members {
		t := tierOf(m.rating)
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
	}
	return lo, hi
}
