package model

import "time"

// Estimate is the probed item count of one community.
type Estimate struct {
	// CommunityID identifies the probed community.
	CommunityID string `json:"community_id"`

	// Name is the community's display name.
	Name string `json:"name"`

	// Items is the estimated number of listed items.
	Items int `json:"items"`

	// Probes is how many page requests the estimate cost.
	Probes int `json:"probes"`
}

// ProbeReport collects the estimates of one probe run.
type ProbeReport struct {
	// BaseURL is the platform the probe ran against.
	BaseURL string `json:"base_url"`

	// DateProbed is when the run finished.
	DateProbed time.Time `json:"date_probed"`

	// Estimates holds one entry per probed community.
	Estimates []Estimate `json:"estimates"`
}

// TotalItems sums the estimated items across all communities.
func (r *ProbeReport) TotalItems() int {
	var total int
	for _, e := range r.Estimates {
		total += e.Items
	}
	return total
}

// TotalProbes sums the page requests spent across all communities.
func (r *ProbeReport) TotalProbes() int {
	var total int
	for _, e := range r.Estimates {
		total += e.Probes
	}
	return total
}
