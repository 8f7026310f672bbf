package model

// RiskLevel is an ordinal severity bucket derived from MDR_Probability.
type RiskLevel string

const (
	RiskGreen  RiskLevel = "Green"
	RiskYellow RiskLevel = "Yellow"
	RiskRed    RiskLevel = "Red"
)

// RiskLevels returns the buckets in display order.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskGreen, RiskYellow, RiskRed}
}

// BucketCount is one entry of an ordered bucket histogram.
type BucketCount struct {
	Level RiskLevel `json:"level"`
	Count int       `json:"count"`
}

// BucketCounts maps every risk level to its record count.
type BucketCounts map[RiskLevel]int

// NewBucketCounts returns counts with every bucket present at zero.
func NewBucketCounts() BucketCounts {
	c := make(BucketCounts, 3)
	for _, l := range RiskLevels() {
		c[l] = 0
	}
	return c
}

// Ordered returns the counts as Green, Yellow, Red. Missing keys read as zero.
func (c BucketCounts) Ordered() []BucketCount {
	out := make([]BucketCount, 0, 3)
	for _, l := range RiskLevels() {
		out = append(out, BucketCount{Level: l, Count: c[l]})
	}
	return out
}

// Total sums all buckets.
func (c BucketCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
