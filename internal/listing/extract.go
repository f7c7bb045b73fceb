package listing

import (
	"strconv"
	"strings"
)

// ShortDescriptionLimit is the cut point for the card's short description.
// The cut is a plain rune-count truncation, not word-boundary aware.
const ShortDescriptionLimit = 150

// ellipsis is appended to truncated descriptions.
const ellipsis = "..."

// Extractor pulls typed values out of listing trees for one feed dialect.
// Every accessor tolerates absent fields and substitutes a default; none of
// them can fail.
type Extractor struct {
	dialect Dialect

	// detailBaseURL is the detail-page URL used to synthesize a link when
	// the feed provides none.
	detailBaseURL string
}

// NewExtractor returns an Extractor for the given dialect. detailBaseURL is
// the bare detail-page URL used as the last link fallback.
func NewExtractor(dialect Dialect, detailBaseURL string) *Extractor {
	return &Extractor{dialect: dialect, detailBaseURL: detailBaseURL}
}

// Text returns the first text value for a logical field, or "".
func (e *Extractor) Text(l *Listing, f Field) string {
	tag := e.dialect.Tag(f)
	if tag == "" {
		return ""
	}
	return strings.TrimSpace(l.FirstText(tag))
}

// Int returns the first value for a logical field parsed as an integer.
// Absent or non-numeric values yield 0.
func (e *Extractor) Int(l *Listing, f Field) int {
	n, err := strconv.Atoi(e.Text(l, f))
	if err != nil {
		return 0
	}
	return n
}

// Photo returns the listing photo URL, honoring the dialect's nested photo
// container when it has one. Empty when the feed carries no photo.
func (e *Extractor) Photo(l *Listing) string {
	if e.dialect.PhotoPath != "" {
		if container := l.First(e.dialect.PhotoPath); container != nil {
			if url := strings.TrimSpace(container.FirstText(e.dialect.Tag(FieldPhoto))); url != "" {
				return url
			}
		}
	}
	return e.Text(l, FieldPhoto)
}

// DetailLink resolves the detail-page URL for a listing. The feed spells
// its link in at least three shapes, so resolution follows a fixed priority
// order, first non-empty wins:
//
//  1. structured landing-pages sub-object, Url entry
//  2. structured landing-pages sub-object, Link entry
//  3. flat Url, Link, UrlAnnuncio fields
//  4. synthesized from the listing code (?codice=), else the listing id
//     (?id=), else the bare configured detail-page URL
func (e *Extractor) DetailLink(l *Listing) string {
	if link := e.landingPageLink(l, FieldURL); link != "" {
		return link
	}
	if link := e.landingPageLink(l, FieldLink); link != "" {
		return link
	}
	for _, f := range []Field{FieldURL, FieldLink, FieldListingURL} {
		if link := e.Text(l, f); link != "" {
			return link
		}
	}
	if code := e.Text(l, FieldCode); code != "" {
		return e.detailBaseURL + "?codice=" + code
	}
	if id := e.Text(l, FieldListingID); id != "" {
		return e.detailBaseURL + "?id=" + id
	}
	return e.detailBaseURL
}

// landingPageLink reads one entry of the structured landing-pages
// sub-object. The entry's first element may be a plain text node or carry
// its value as nested text content; both collapse to Text here.
func (e *Extractor) landingPageLink(l *Listing, f Field) string {
	pages := l.First(e.dialect.Tag(FieldLandingPages))
	if pages == nil {
		return ""
	}
	return strings.TrimSpace(pages.FirstText(e.dialect.Tag(f)))
}

// Truncate cuts s to at most limit runes, appending an ellipsis marker when
// a cut happened. Shorter strings pass through unchanged.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

// Card extracts and defaults every field of one listing.
func (e *Extractor) Card(l *Listing) Card {
	title := e.Text(l, FieldTitle)
	description := e.Text(l, FieldDescription)

	c := Card{
		Title:    title,
		City:     e.Text(l, FieldCity),
		Region:   e.Text(l, FieldRegion),
		Province: e.Text(l, FieldProvince),

		Price:    e.Int(l, FieldPrice),
		Currency: e.Text(l, FieldCurrency),

		Description: description,

		ImageURL:   e.Photo(l),
		DetailLink: e.DetailLink(l),

		Offer:         e.Text(l, FieldOffer),
		TypeCode:      e.Text(l, FieldTypeCode),
		CategoryCodes: e.Text(l, FieldCategoryCode),
		Panorama:      e.Text(l, FieldPanorama),
		GardenSheet:   e.Text(l, FieldGardenSheet),
		TerraceSheet:  e.Text(l, FieldTerraceSheet),

		Area:      e.Text(l, FieldArea),
		Rooms:     e.Text(l, FieldRooms),
		Bedrooms:  e.Text(l, FieldBedrooms),
		Bathrooms: e.Text(l, FieldBathrooms),

		GardenArea:   e.Int(l, FieldGardenArea),
		TerraceArea:  e.Int(l, FieldTerraceArea),
		ParkingSpots: e.Int(l, FieldParkingSpots),

		Degenerate: title == "" && description == "",
	}

	// Defaults applied after the degenerate check so that a fully-empty
	// listing is still recognizable as such.
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.City == "" {
		c.City = DefaultCity
	}
	if c.Description == "" {
		c.Description = DefaultDescription
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.ImageURL == "" {
		c.ImageURL = PlaceholderImage
	}
	if c.Area == "" {
		c.Area = "0"
	}
	if c.Rooms == "" {
		c.Rooms = "0"
	}
	if c.Bedrooms == "" {
		c.Bedrooms = "0"
	}
	if c.Bathrooms == "" {
		c.Bathrooms = "0"
	}

	c.ShortDescription = Truncate(c.Description, ShortDescriptionLimit)
	return c
}
