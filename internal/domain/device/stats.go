package device

import (
	"sort"
	"strings"

	"terminal-inventory/internal/domain/customer"
)

// Stats holds aggregate counts over the device collection.
type Stats struct {
	TotalDevices       int
	AvailableDevices   int
	RentedDevices      int
	LoanedDevices      int
	SoldDevices        int
	DevelopmentDevices int
}

// ComputeStats counts totals in a single pass over the snapshot.
func ComputeStats(devices []*Device) Stats {
	stats := Stats{TotalDevices: len(devices)}
	for _, d := range devices {
		if d.ExitDate == nil {
			stats.AvailableDevices++
		}
		if d.RemovalReason == nil {
			continue
		}
		switch *d.RemovalReason {
		case ReasonRental:
			stats.RentedDevices++
		case ReasonLoan:
			stats.LoanedDevices++
		case ReasonSale:
			stats.SoldDevices++
		case ReasonDevelopment:
			stats.DevelopmentDevices++
		}
	}
	return stats
}

// ModelSummary is the per-model aggregate view of the device collection.
type ModelSummary struct {
	ID             string
	Name           string
	TotalCount     int
	AvailableCount int
}

// ModelSlug normalizes a model name into a stable key: lowercased, with
// whitespace runs collapsed to single hyphens. Used only as a key, never
// for display.
func ModelSlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// ModelSummaries groups devices by exact model name. Output order is the
// order of first occurrence of each name in the input.
func ModelSummaries(devices []*Device) []ModelSummary {
	index := make(map[string]int)
	summaries := make([]ModelSummary, 0)
	for _, d := range devices {
		i, ok := index[d.ModelName]
		if !ok {
			i = len(summaries)
			index[d.ModelName] = i
			summaries = append(summaries, ModelSummary{
				ID:   ModelSlug(d.ModelName),
				Name: d.ModelName,
			})
		}
		summaries[i].TotalCount++
		if d.ExitDate == nil {
			summaries[i].AvailableCount++
		}
	}
	return summaries
}

// CustomerGroup is the set of devices checked out to one customer identity.
type CustomerGroup struct {
	Customer customer.Info
	Devices  []*Device
}

// GroupByCustomer filters devices to those checked out under reason and
// groups them by the exact five-field customer key, in order of first
// occurrence. Devices without customer info are skipped.
func GroupByCustomer(devices []*Device, reason RemovalReason) []CustomerGroup {
	index := make(map[string]int)
	groups := make([]CustomerGroup, 0)
	for _, d := range devices {
		if d.RemovalReason == nil || *d.RemovalReason != reason || d.CustomerInfo == nil {
			continue
		}
		key := d.CustomerInfo.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CustomerGroup{Customer: *d.CustomerInfo})
		}
		groups[i].Devices = append(groups[i].Devices, d)
	}
	return groups
}

// SortForDisplay orders devices for inventory views: available devices
// first, then by entry date with the newest first.
func SortForDisplay(devices []*Device) {
	sort.SliceStable(devices, func(i, j int) bool {
		a, b := devices[i], devices[j]
		if (a.ExitDate == nil) != (b.ExitDate == nil) {
			return a.ExitDate == nil
		}
		return a.EntryDate.After(b.EntryDate)
	})
}
