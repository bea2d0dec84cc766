package jobsearch

import (
	"context"
	"strings"
)

const optInReason = "opt-in, enable in jobsearch.enable-filters"

// DefaultFilters returns the standard chain: drop listings without an apply
// link, drop duplicates, then drop excluded employers. The first two change
// which listings make the top five, so they start disabled.
func DefaultFilters(excludedEmployers []string) []Filter {
	missingLink := NewMissingApplyLink()
	missingLink.Disable(optInReason)

	duplicates := NewDuplicates()
	duplicates.Disable(optInReason)

	return []Filter{
		missingLink,
		duplicates,
		NewExcludedEmployers(excludedEmployers),
	}
}

type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) Enable() {
	t.disabled = false
	t.reason = ""
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type missingApplyLinkFilter struct {
	toggle
}

func (f *missingApplyLinkFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

// NewMissingApplyLink creates a filter removing listings nobody can apply to.
func NewMissingApplyLink() Filter {
	return &missingApplyLinkFilter{}
}

func (f *missingApplyLinkFilter) Name() string { return "missing_apply_link" }

func (f *missingApplyLinkFilter) Apply(_ context.Context, v *Listings) (*Listings, Step, error) {
	initial := v.Len()
	kept := v.Items[:0]
	for _, item := range v.Items {
		if item == nil || strings.TrimSpace(item.ApplyURL) == "" {
			continue
		}
		kept = append(kept, item)
	}
	v.Items = kept

	return v, Step{Initial: initial, Dropped: initial - v.Len(), Left: v.Len()}, nil
}

type duplicatesFilter struct {
	toggle
}

func (f *duplicatesFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

// NewDuplicates creates a filter keeping the first listing of every
// title/employer pair.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Apply(_ context.Context, v *Listings) (*Listings, Step, error) {
	initial := v.Len()
	seen := make(map[string]struct{}, initial)
	kept := v.Items[:0]
	for _, item := range v.Items {
		if item == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(item.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(item.Employer))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, item)
	}
	v.Items = kept

	return v, Step{Initial: initial, Dropped: initial - v.Len(), Left: v.Len()}, nil
}

type excludedEmployersFilter struct {
	toggle
	employers []string
}

// NewExcludedEmployers creates a filter removing listings by employer name.
func NewExcludedEmployers(employers []string) Filter {
	return &excludedEmployersFilter{employers: employers}
}

func (f *excludedEmployersFilter) Name() string { return "excluded_employers" }

func (f *excludedEmployersFilter) Apply(_ context.Context, v *Listings) (*Listings, Step, error) {
	initial := v.Len()
	v.Exclude(ListingEmployerField, f.employers)
	return v, Step{Initial: initial, Dropped: initial - v.Len(), Left: v.Len()}, nil
}

func (f *excludedEmployersFilter) Status() Status {
	details := map[string]string{}
	if len(f.employers) > 0 {
		details["employers"] = strings.Join(f.employers, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
