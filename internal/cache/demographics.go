package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

// DemographicInfo is the patient context attached to scoring requests.
// Gender feeds gender-keyed assessments; birth year selects geriatric
// instruments on the client side.
type DemographicInfo struct {
	PatientID string `json:"patient_id"`
	Gender    string `json:"gender"`
	BirthYear int    `json:"birth_year,omitempty"`
}

// DemographicsCache keeps recently seen patient demographics in an
// in-process TTL'd LRU so repeat submissions skip the lookup.
type DemographicsCache struct {
	lru *expirable.LRU[string, DemographicInfo]
	log *logrus.Logger
}

// NewDemographicsCache creates a cache holding up to size entries, each
// expiring after ttl.
func NewDemographicsCache(size int, ttl time.Duration, logger *logrus.Logger) *DemographicsCache {
	return &DemographicsCache{
		lru: expirable.NewLRU[string, DemographicInfo](size, nil, ttl),
		log: logger,
	}
}

// Get returns the cached demographics for a patient, if present and fresh.
func (c *DemographicsCache) Get(patientID string) (DemographicInfo, bool) {
	info, ok := c.lru.Get(patientID)
	if ok {
		c.log.WithField("patient_id", patientID).Debug("Demographics cache hit")
	}
	return info, ok
}

// Set stores a patient's demographics.
func (c *DemographicsCache) Set(info DemographicInfo) {
	c.lru.Add(info.PatientID, info)
}

// Invalidate drops a patient's cached demographics.
func (c *DemographicsCache) Invalidate(patientID string) {
	c.lru.Remove(patientID)
}

// Len returns the number of cached entries.
func (c *DemographicsCache) Len() int {
	return c.lru.Len()
}
