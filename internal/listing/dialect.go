package listing

import "fmt"

// Field is a logical listing field, independent of how a particular feed
// dialect spells its tag.
type Field string

// Logical fields understood by the extractor.
const (
	FieldTitle        Field = "title"
	FieldCity         Field = "city"
	FieldRegion       Field = "region"
	FieldProvince     Field = "province"
	FieldPrice        Field = "price"
	FieldCurrency     Field = "currency"
	FieldDescription  Field = "description"
	FieldPhoto        Field = "photo"
	FieldOffer        Field = "offer"
	FieldTypeCode     Field = "type_code"
	FieldCategoryCode Field = "category_code"
	FieldArea         Field = "area"
	FieldRooms        Field = "rooms"
	FieldBedrooms     Field = "bedrooms"
	FieldBathrooms    Field = "bathrooms"
	FieldGardenArea   Field = "garden_area"
	FieldTerraceArea  Field = "terrace_area"
	FieldParkingSpots Field = "parking_spots"
	FieldPanorama     Field = "panorama_sheet"
	FieldGardenSheet  Field = "garden_sheet"
	FieldTerraceSheet Field = "terrace_sheet"
	FieldCode         Field = "code"
	FieldListingID    Field = "listing_id"
	FieldLandingPages Field = "landing_pages"
	FieldURL          Field = "url"
	FieldLink         Field = "link"
	FieldListingURL   Field = "listing_url"
)

// Dialect is the accessor table for one feed shape: where the repeated item
// element lives and how each logical field is tagged. Dialect differences
// stay in these tables, not in branching extraction code.
type Dialect struct {
	Name string

	// ItemPath is the etree path to the repeated listing element,
	// e.g. "/Annunci/Annuncio".
	ItemPath string

	// PhotoPath optionally names a container tag holding the photo list;
	// when set, the photo is read from the first FieldPhoto element inside
	// it instead of a flat top-level tag.
	PhotoPath string

	Tags map[Field]string
}

// Tag returns the dialect's tag name for a logical field, or "" when the
// dialect has no spelling for it.
func (d Dialect) Tag(f Field) string {
	return d.Tags[f]
}

// DialectMiogest describes the classic Miogest partner feed: capitalized
// Italian tags under Annunci/Annuncio, photo as a flat Foto tag.
var DialectMiogest = Dialect{
	Name:     "miogest",
	ItemPath: "/Annunci/Annuncio",
	Tags: map[Field]string{
		FieldTitle:        "Titolo",
		FieldCity:         "Comune",
		FieldRegion:       "Regione",
		FieldProvince:     "Provincia",
		FieldPrice:        "Prezzo",
		FieldCurrency:     "Valuta",
		FieldDescription:  "Descrizione",
		FieldPhoto:        "Foto",
		FieldOffer:        "Offerta",
		FieldTypeCode:     "Tipologia",
		FieldCategoryCode: "Categoria",
		FieldArea:         "Mq",
		FieldRooms:        "Vani",
		FieldBedrooms:     "Camere",
		FieldBathrooms:    "Bagni",
		FieldGardenArea:   "MqGiardino",
		FieldTerraceArea:  "MqTerrazzo",
		FieldParkingSpots: "PostiAuto",
		FieldPanorama:     "Scheda_Panorama",
		FieldGardenSheet:  "Scheda_Giardino",
		FieldTerraceSheet: "Scheda_Terrazzi",
		FieldCode:         "Codice",
		FieldListingID:    "AnnuncioId",
		FieldLandingPages: "LandingPages",
		FieldURL:          "Url",
		FieldLink:         "Link",
		FieldListingURL:   "UrlAnnuncio",
	},
}

// DialectImmobili describes the lower-case feed shape: tags under
// immobili/immobile with the photo list nested inside a fotografie element.
var DialectImmobili = Dialect{
	Name:      "immobili",
	ItemPath:  "/immobili/immobile",
	PhotoPath: "fotografie",
	Tags: map[Field]string{
		FieldTitle:        "titolo",
		FieldCity:         "comune",
		FieldRegion:       "regione",
		FieldProvince:     "provincia",
		FieldPrice:        "prezzo",
		FieldCurrency:     "valuta",
		FieldDescription:  "descrizione",
		FieldPhoto:        "foto",
		FieldOffer:        "offerta",
		FieldTypeCode:     "tipologia",
		FieldCategoryCode: "categoria",
		FieldArea:         "mq",
		FieldRooms:        "vani",
		FieldBedrooms:     "camere",
		FieldBathrooms:    "bagni",
		FieldGardenArea:   "mq_giardino",
		FieldTerraceArea:  "mq_terrazzo",
		FieldParkingSpots: "posti_auto",
		FieldPanorama:     "panorama",
		FieldGardenSheet:  "giardino",
		FieldTerraceSheet: "terrazzi",
		FieldCode:         "codice",
		FieldListingID:    "id",
		FieldLandingPages: "landing_pages",
		FieldURL:          "url",
		FieldLink:         "link",
		FieldListingURL:   "url_annuncio",
	},
}

// DialectByName resolves a configured dialect name to its accessor table.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "", DialectMiogest.Name:
		return DialectMiogest, nil
	case DialectImmobili.Name:
		return DialectImmobili, nil
	default:
		return Dialect{}, fmt.Errorf("unknown feed dialect %q", name)
	}
}
