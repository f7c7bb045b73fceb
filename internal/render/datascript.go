package render

import (
	"encoding/json"
	"fmt"

	"github.com/mvella/casabuild/internal/classify"
	"github.com/mvella/casabuild/internal/listing"
)

// cardData is the JSON view of one listing embedded in the page for
// client-side use.
type cardData struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Contract    string `json:"contract"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// DataScript renders the embedded data block consumed by the page's own
// scripts. encoding/json escapes <, > and & inside string values, so the
// payload cannot break out of the script element. Degenerate listings are
// excluded, mirroring the card join.
func DataScript(cards []listing.Card, results []classify.Result) (string, error) {
	data := make([]cardData, 0, len(cards))
	for i, c := range cards {
		if c.Degenerate {
			continue
		}
		data = append(data, cardData{
			Title:       c.Title,
			Location:    c.City,
			Category:    string(results[i].Category),
			Contract:    string(results[i].Contract),
			Price:       classify.FormatPrice(c.Currency, c.Price),
			Image:       c.ImageURL,
			Description: c.ShortDescription,
			Link:        c.DetailLink,
		})
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshaling properties data: %w", err)
	}
	return fmt.Sprintf("<script>let propertiesData = %s;</script>", payload), nil
}
