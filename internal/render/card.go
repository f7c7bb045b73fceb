// Package render turns classified listings into HTML card fragments and
// splices them into the site template. All interpolated feed content goes
// through html/template's contextual escaping; the feed is not trusted to
// produce well-behaved markup.
package render

import (
	"html/template"
	"strings"

	"github.com/mvella/casabuild/internal/classify"
	"github.com/mvella/casabuild/internal/listing"
)

// cardTemplate is the self-contained markup block for one listing. The
// data-* attributes carry the derived classification so the client-side
// filter can work without re-parsing visible text.
const cardTemplate = `<div class="property-card"
     data-contratto="{{.Contract}}"
     data-categoria="{{.Category}}"
     data-categoria-codici="{{.CategoryCodes}}"
     data-caratteristiche="{{.Features}}"
     data-comune="{{.CityLower}}"
     data-regione="{{.RegionLower}}"
     data-provincia="{{.ProvinceLower}}"
     data-prezzo="{{.Price}}"
     data-mq="{{.Area}}"
     data-vani="{{.Rooms}}"
     data-camere="{{.Bedrooms}}"
     data-bagni="{{.Bathrooms}}">
  <div class="property-image">
    <img src="{{.ImageURL}}" alt="{{.Title}}" onerror="this.src='{{.Placeholder}}'">
  </div>
  <div class="property-details">
    <div class="property-title">{{.Title}}</div>
    <div class="property-location">{{.City}}{{if .Region}}, {{.Region}}{{end}}</div>
    <div class="property-price">{{.PriceDisplay}}</div>
    <div class="property-specs">{{.Area}} m² • {{.Rooms}} vani • {{.Bedrooms}} camere • {{.Bathrooms}} bagni</div>
    <div class="property-description">{{.ShortDescription}}</div>
    <div class="property-buttons">
      <a class="view-button" href="{{.DetailLink}}" target="_blank">Vedi Dettagli</a>
      {{- if .ContactURL}}
      <a class="contact-button" href="{{.ContactURL}}" target="_blank">Contattaci</a>
      {{- end}}
    </div>
  </div>
</div>`

// cardView is the template payload for one card.
type cardView struct {
	listing.Card

	Category     classify.Category
	Contract     classify.Contract
	Features     string
	PriceDisplay string

	CityLower     string
	RegionLower   string
	ProvinceLower string

	Placeholder string
	ContactURL  string
}

// Renderer formats classified listings as HTML fragments.
type Renderer struct {
	tmpl *template.Template

	// contactURL, when set, adds a contact button next to the detail link.
	contactURL string
}

// NewRenderer builds a Renderer. contactURL may be empty.
func NewRenderer(contactURL string) *Renderer {
	return &Renderer{
		tmpl:       template.Must(template.New("card").Parse(cardTemplate)),
		contactURL: contactURL,
	}
}

// Card renders one listing. Degenerate listings render as an empty string
// so the caller can drop them from the join. Rendering is pure: a card
// either produces its fragment or nothing.
func (r *Renderer) Card(c listing.Card, cl classify.Result) (string, error) {
	if c.Degenerate {
		return "", nil
	}

	view := cardView{
		Card:          c,
		Category:      cl.Category,
		Contract:      cl.Contract,
		Features:      classify.FeatureList(cl.Features),
		PriceDisplay:  classify.FormatPrice(c.Currency, c.Price),
		CityLower:     strings.ToLower(c.City),
		RegionLower:   strings.ToLower(c.Region),
		ProvinceLower: strings.ToLower(c.Province),
		Placeholder:   listing.PlaceholderImage,
		ContactURL:    r.contactURL,
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, view); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// JoinCards joins rendered fragments, skipping empty ones.
func JoinCards(fragments []string) string {
	kept := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, "\n")
}
