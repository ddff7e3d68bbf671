package domain

import "strings"

// LegislatorRecord is a raw directory result for one elected official.
// Records are transient; they live only for the duration of a resolution.
type LegislatorRecord struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Chamber  string `json:"chamber"`
	Region   string `json:"state"`
	PhotoURL string `json:"photo_url"`
}

// Usable reports whether the record can become a recipient. Records missing
// an email or a full name cannot be contacted or addressed.
func (r LegislatorRecord) Usable() bool {
	return r.Email != "" && r.FullName != ""
}

// RegionConfig holds the chamber-to-title mapping for one region, keyed by
// the lowercase region abbreviation.
type RegionConfig struct {
	Region string            `json:"region"`
	Titles map[string]string `json:"titles"`
}

// Title returns the display title configured for a chamber, if any.
func (c RegionConfig) Title(chamber string) (string, bool) {
	if c.Titles == nil {
		return "", false
	}
	t, ok := c.Titles[chamber]
	return t, ok && t != ""
}

// DisplayName formats a legislator's display name. When a title is configured
// for the record's chamber it is prepended, otherwise the bare full name is
// used.
func (c RegionConfig) DisplayName(rec LegislatorRecord) string {
	if rec.Region != "" && rec.Chamber != "" {
		if title, ok := c.Title(rec.Chamber); ok {
			return title + " " + rec.FullName
		}
	}
	return rec.FullName
}

// Recipient is a resolved, display-ready notification target.
type Recipient struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// DedupKey returns the case-insensitive identity of the recipient. Two
// directory entries with the same email must yield a single send.
func (r Recipient) DedupKey() string {
	return strings.ToLower(r.Email)
}

// NotificationOutcome records the result of one send attempt.
type NotificationOutcome struct {
	Recipient Recipient `json:"recipient"`
	Sent      bool      `json:"sent"`
	Error     string    `json:"error,omitempty"`
}

// Letter is the personalized message composed for one recipient.
type Letter struct {
	From    string `json:"from"`
	ToName  string `json:"to_name"`
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}
