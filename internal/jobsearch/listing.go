package jobsearch

import (
	"fmt"
	"strings"
)

const (
	ListingApplyURLField = "ApplyURL"
	ListingEmployerField = "Employer"
)

type Listings struct {
	Items []*Listing
}

type Listing struct {
	Title    string `json:"job_title,omitempty"`
	Employer string `json:"employer_name,omitempty"`
	City     string `json:"job_city,omitempty"`
	Country  string `json:"job_country,omitempty"`
	ApplyURL string `json:"job_apply_link,omitempty"`
}

func (l *Listing) GetStringField(name string) string {
	if l == nil {
		return ""
	}
	switch name {
	case ListingApplyURLField:
		return l.ApplyURL
	case ListingEmployerField:
		return l.Employer
	default:
		return ""
	}
}

// Location joins the non-empty city and country.
func (l *Listing) Location() string {
	if l == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{l.City, l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (l *Listing) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("**%s** at %s\n📍 %s\n🔗 [Apply Here](%s)", l.Title, l.Employer, l.Location(), l.ApplyURL)
}

func (v *Listings) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

// Format renders up to limit listings separated by blank lines under a heading.
func (v *Listings) Format(limit int) string {
	if v == nil {
		return listingsHeading + "\n\n"
	}

	blocks := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		if item == nil {
			continue
		}
		if limit > 0 && len(blocks) == limit {
			break
		}
		blocks = append(blocks, item.String())
	}

	return listingsHeading + "\n\n" + strings.Join(blocks, "\n\n")
}

// Exclude removes listings whose field equals one of targets (case-insensitive)
// and returns the titles of the removed listings. Order is preserved.
func (v *Listings) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	var excluded []string
	kept := v.Items[:0]
	for _, item := range v.Items {
		if item == nil {
			continue
		}
		if _, ok := set[strings.ToLower(strings.TrimSpace(item.GetStringField(name)))]; ok {
			excluded = append(excluded, item.Title)
			continue
		}
		kept = append(kept, item)
	}
	v.Items = kept

	return excluded
}
