package analytics

import (
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
)

// MonthBuckets counts times per calendar month of loc, labelled "Jan 2006".
// Buckets appear in the order their month is first seen.
func MonthBuckets(times []time.Time, loc *time.Location) []domain.MonthBucket {
	if loc == nil {
		loc = time.UTC
	}
	buckets := []domain.MonthBucket{}
	index := map[string]int{}
	for _, t := range times {
		label := t.In(loc).Format(monthLabelLayout)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, domain.MonthBucket{Month: label})
		}
		buckets[i].Count++
	}
	return buckets
}

func contactTimes(contacts []domain.Contact) []time.Time {
	out := make([]time.Time, len(contacts))
	for i, c := range contacts {
		out[i] = c.CreatedAt
	}
	return out
}

// ContactStats counts contacts and the share created this calendar month
func ContactStats(contacts []domain.Contact, now time.Time) domain.ContactStatsDTO {
	fresh := CountSince(contactTimes(contacts), MonthStart(now))
	return domain.ContactStatsDTO{
		Total:        len(contacts),
		NewThisMonth: fresh,
		GrowthRate:   Rate(fresh, len(contacts)),
	}
}

// ContactsByCreator counts contacts per creating profile in first-seen order.
// Names come from creators when known.
func ContactsByCreator(contacts []domain.Contact, creators map[int64]domain.Profile) []domain.CreatorCount {
	out := []domain.CreatorCount{}
	index := map[int64]int{}
	for _, c := range contacts {
		i, ok := index[c.CreatedBy]
		if !ok {
			i = len(out)
			index[c.CreatedBy] = i
			entry := domain.CreatorCount{ProfileID: c.CreatedBy}
			if p, found := creators[c.CreatedBy]; found {
				entry.Fullname = p.Fullname
			}
			out = append(out, entry)
		}
		out[i].Count++
	}
	return out
}

// ContactAnalytics builds the contacts section of the analytics page. contacts
// are expected newest first.
func ContactAnalytics(contacts []domain.Contact, creators map[int64]domain.Profile, loc *time.Location) domain.ContactAnalyticsDTO {
	return domain.ContactAnalyticsDTO{
		Total:     len(contacts),
		Recent:    mapper.ToContactDTOs(First(contacts, RecentLimit)),
		ByMonth:   MonthBuckets(contactTimes(contacts), loc),
		ByCreator: ContactsByCreator(contacts, creators),
	}
}
