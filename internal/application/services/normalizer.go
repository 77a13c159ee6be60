package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/teeoff"
)

// Normalize flattens a raw provider search response into per-facility
// display groups, keeping only facilities in the selected city. City
// comparison trims and case-folds both sides; upstream city strings are
// free text. Pure and order-preserving: the same input always yields the
// same output, facilities and slots in provider order.
func Normalize(result *teeoff.SearchResult, city string) []entities.FacilityTeeTimes {
	return normalize(result, func(facility teeoff.Facility) bool {
		return nameMatches(facility.Address.City, city)
	})
}

// NormalizeFacility keeps only facilities whose name matches, with the
// same forgiving comparison Normalize uses for cities. Alert rules
// reference catalog courses by name, never by a provider city string.
func NormalizeFacility(result *teeoff.SearchResult, facilityName string) []entities.FacilityTeeTimes {
	return normalize(result, func(facility teeoff.Facility) bool {
		return nameMatches(facility.Name, facilityName)
	})
}

func normalize(result *teeoff.SearchResult, keep func(teeoff.Facility) bool) []entities.FacilityTeeTimes {
	if result == nil {
		return nil
	}

	var groups []entities.FacilityTeeTimes
	for _, facility := range result.Facilities {
		if !keep(facility) {
			continue
		}

		group := entities.FacilityTeeTimes{
			FacilityName: facility.Name,
			Address:      facilityAddress(facility.Address),
			Distance:     formatDistance(facility.Distance),
			Thumbnail:    facility.Thumbnail,
		}

		for _, slot := range facility.TeeTimes {
			group.Slots = append(group.Slots, normalizeSlot(facility, slot))
		}

		groups = append(groups, group)
	}

	return groups
}

func normalizeSlot(facility teeoff.Facility, slot teeoff.TeeTime) entities.DisplaySlot {
	display := entities.DisplaySlot{
		FacilityName: facility.Name,
		Address:      facilityAddress(facility.Address),
		Distance:     formatDistance(facility.Distance),
		Thumbnail:    facility.Thumbnail,
		Time:         slot.Time,
		Price:        slot.Price.RoundedSuperScriptFormattedValue,
		PlayerCount:  formatPlayerCount(slot.Players),
		DetailURL:    slot.DetailURL,
	}
	if slot.DisplayRate != nil && slot.DisplayRate.HoleCount != nil {
		count := *slot.DisplayRate.HoleCount
		display.HoleCount = &count
	}
	return display
}

func nameMatches(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}

// formatPlayerCount caps the display at the "up to 4" sentinel even when
// the provider reports more than four open spots.
func formatPlayerCount(players int) string {
	if players >= 4 {
		return entities.PlayerCountUpToFour
	}
	return strconv.Itoa(players)
}

func facilityAddress(addr teeoff.Address) string {
	if addr.FormattedString != "" {
		return addr.FormattedString
	}

	parts := make([]string, 0, 4)
	for _, part := range []string{addr.Line1, addr.City, addr.StateProvince, addr.PostalCode} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func formatDistance(miles float64) string {
	if miles == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f mi", miles)
}
