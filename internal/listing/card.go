package listing

// Display defaults substituted for missing feed fields.
const (
	DefaultTitle       = "Immobile senza titolo"
	DefaultCity        = "Località non specificata"
	DefaultDescription = "Descrizione non disponibile"
	DefaultCurrency    = "CHF"

	// PlaceholderImage is used when the feed carries no photo and as the
	// client-side onerror fallback.
	PlaceholderImage = "https://via.placeholder.com/400x250/6E5C4F/ffffff?text=Immagine+non+disponibile"
)

// Card holds the extracted and defaulted fields of one listing, ready for
// classification and rendering. It is created once per Listing and not
// persisted anywhere.
type Card struct {
	Title    string
	City     string
	Region   string
	Province string

	Price    int
	Currency string

	Description      string
	ShortDescription string

	ImageURL   string
	DetailLink string

	// Raw feed values the classifier works from.
	Offer         string
	TypeCode      string
	CategoryCodes string
	Panorama      string
	GardenSheet   string
	TerraceSheet  string

	// Technical specs kept as display strings.
	Area      string
	Rooms     string
	Bedrooms  string
	Bathrooms string

	GardenArea   int
	TerraceArea  int
	ParkingSpots int

	// Degenerate marks a listing with neither title nor description in the
	// feed. Degenerate cards render as an empty fragment and are dropped
	// from the final join.
	Degenerate bool
}
