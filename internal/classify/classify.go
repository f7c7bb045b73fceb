// Package classify derives secondary listing attributes — property
// category, feature tags, contract kind — from extracted fields using
// ordered keyword heuristics. Everything here is a pure function.
package classify

import (
	"strings"

	"github.com/mvella/casabuild/internal/listing"
)

// Category is the property category used by the client-side filter.
type Category string

// Property categories. Every listing maps to exactly one of these.
const (
	CategoryApartment  Category = "appartamento"
	CategoryHouse      Category = "casa"
	CategoryCommercial Category = "commerciale"
)

// Contract is the contract kind of a listing.
type Contract string

// Contract kinds.
const (
	ContractSale   Contract = "vendita"
	ContractRental Contract = "affitto"
)

// Feature is a boolean-derived descriptive tag of a listing.
type Feature string

// Feature tags, in the fixed order they appear in the derived tag set.
const (
	FeatureView      Feature = "vista"
	FeaturePenthouse Feature = "attico"
	FeatureGarden    Feature = "giardino"
	FeatureTerrace   Feature = "terrazzo"
	FeatureParking   Feature = "box"
)

// Result holds the derived classification of one listing.
type Result struct {
	Category Category
	Contract Contract
	Features []Feature
}

// Classify derives category, contract kind and feature tags from an
// extracted card. It is total: every card classifies, defaulting to an
// apartment for sale-or-rental per the offer flag.
func Classify(c listing.Card) Result {
	return Result{
		Category: Categorize(c),
		Contract: ContractKind(c.Offer),
		Features: Features(c),
	}
}

// Categorize determines the property category. Title keywords are checked
// first, in priority order, then the coded feed type, then the default.
func Categorize(c listing.Card) Category {
	title := strings.ToLower(c.Title)

	switch {
	case strings.Contains(title, "attico"):
		return CategoryApartment
	case strings.Contains(title, "appartamento"):
		return CategoryApartment
	case strings.Contains(title, "villa"), strings.Contains(title, "casa"):
		return CategoryHouse
	case strings.Contains(title, "ufficio"), strings.Contains(title, "commerciale"):
		return CategoryCommercial
	}

	switch strings.ToLower(c.TypeCode) {
	case "v":
		return CategoryHouse
	case "a":
		return CategoryApartment
	case "u":
		return CategoryCommercial
	}
	return CategoryApartment
}

// ContractKind maps the feed's offer flag to the contract kind.
func ContractKind(offer string) Contract {
	if offer == "si" {
		return ContractSale
	}
	return ContractRental
}

// Features derives the tag set. Each tag is evaluated independently from
// the lower-cased title, description and schedule sheets plus the numeric
// area fields; the result keeps the fixed tag order.
func Features(c listing.Card) []Feature {
	title := strings.ToLower(c.Title)
	description := strings.ToLower(c.Description)
	panorama := strings.ToLower(c.Panorama)
	garden := strings.ToLower(c.GardenSheet)
	terrace := strings.ToLower(c.TerraceSheet)

	hasView := strings.Contains(title, "vista") ||
		strings.Contains(description, "vista") ||
		strings.Contains(panorama, "vista") ||
		strings.Contains(panorama, "lago") ||
		strings.Contains(panorama, "aperta")

	hasPenthouse := strings.Contains(title, "attico") ||
		strings.Contains(description, "attico")

	hasGarden := garden == "privato" ||
		c.GardenArea > 0 ||
		strings.Contains(description, "giardino")

	// An absent terrace sheet must not count as "not no": only an explicit
	// value other than "no" triggers the tag.
	hasTerrace := c.TerraceArea > 0 ||
		(terrace != "" && terrace != "no") ||
		strings.Contains(description, "terrazzo")

	hasParking := c.ParkingSpots > 0 ||
		strings.Contains(description, "garage") ||
		strings.Contains(description, "box")

	var features []Feature
	if hasView {
		features = append(features, FeatureView)
	}
	if hasPenthouse {
		features = append(features, FeaturePenthouse)
	}
	if hasGarden {
		features = append(features, FeatureGarden)
	}
	if hasTerrace {
		features = append(features, FeatureTerrace)
	}
	if hasParking {
		features = append(features, FeatureParking)
	}
	return features
}

// FeatureList renders the tag set as the comma-joined attribute value
// carried by each card.
func FeatureList(features []Feature) string {
	parts := make([]string, len(features))
	for i, f := range features {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}
