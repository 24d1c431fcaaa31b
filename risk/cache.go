package risk

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// assessmentCache memoizes assessments for repeated identical inputs so a
// resubmitted form does not re-invoke the classifier. Keyed on the full
// record plus the policy name; swapping the policy purges it.
type assessmentCache struct {
	entries *lru.Cache[string, *Assessment]
}

func newAssessmentCache(size int) (*assessmentCache, error) {
	entries, err := lru.New[string, *Assessment](size)
	if err != nil {
		return nil, err
	}
	return &assessmentCache{entries: entries}, nil
}

func (c *assessmentCache) get(record Record, policy string) (*Assessment, bool) {
	return c.entries.Get(cacheKey(record, policy))
}

func (c *assessmentCache) add(record Record, policy string, assessment *Assessment) {
	c.entries.Add(cacheKey(record, policy), assessment)
}

func (c *assessmentCache) purge() {
	c.entries.Purge()
}

func cacheKey(record Record, policy string) string {
	return fmt.Sprintf("%s|%g|%g|%g|%g|%d|%d|%d",
		policy,
		record.CompressionTime,
		record.NitroglycerinDose,
		record.RadialDiameterCM,
		record.SheathRatio,
		record.HeparinCategory,
		record.PunctureAttempts,
		record.PriorCatheterization,
	)
}
