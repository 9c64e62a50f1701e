package entity

import (
	"sort"
	"time"
)

type LeadStatus string

const (
	LeadPending   LeadStatus = "pending"
	LeadAccepted  LeadStatus = "accepted"
	LeadRejected  LeadStatus = "rejected"
	LeadContacted LeadStatus = "contacted"
)

// Lead is a discovered person or company tracked through the review
// pipeline. Type decides which of the optional fields apply: profile URL
// and skills for people, website and technologies for companies.
type Lead struct {
	Id           string     `json:"id"`
	Type         EntityType `json:"type"`
	Name         string     `json:"name"`
	Title        string     `json:"title,omitempty"`
	Company      string     `json:"company,omitempty"`
	Location     string     `json:"location,omitempty"`
	ProfileURL   string     `json:"profile_url,omitempty"`
	Website      string     `json:"website,omitempty"`
	Industry     string     `json:"industry,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	Skills       []string   `json:"skills,omitempty"`
	Technologies []string   `json:"technologies,omitempty"`
	Status       LeadStatus `json:"status"`
	FoundAt      time.Time  `json:"found_at"`
}

// DedupKey is the field used to suppress duplicate storage: profile URL for
// people, website for companies.
func (l Lead) DedupKey() string {
	if l.Type == EntityCompany {
		return l.Website
	}
	return l.ProfileURL
}

// MergeLeads prepends incoming leads that are not already present (by dedup
// key) and truncates the collection to max entries, evicting the oldest.
// Incoming leads with an empty dedup key are always kept.
func MergeLeads(existing, incoming []Lead, max int) []Lead {
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		if k := l.DedupKey(); k != "" {
			seen[k] = true
		}
	}

	var fresh []Lead
	for _, l := range incoming {
		k := l.DedupKey()
		if k != "" && seen[k] {
			continue
		}
		if k != "" {
			seen[k] = true
		}
		fresh = append(fresh, l)
	}

	merged := append(fresh, existing...)
	if len(merged) > max {
		merged = merged[:max]
	}
	return merged
}

// FilterLeads applies type and status filters ("" or "all" means no filter)
// and returns the result sorted by FoundAt descending.
func FilterLeads(leads []Lead, entityType, status string) []Lead {
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if entityType != "" && entityType != "all" && string(l.Type) != entityType {
			continue
		}
		if status != "" && status != "all" && string(l.Status) != status {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FoundAt.After(out[j].FoundAt)
	})
	return out
}
