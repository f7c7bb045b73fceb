package classify

import "strconv"

// PriceOnRequest is rendered when a listing has no positive price.
const PriceOnRequest = "Prezzo su richiesta"

// FormatPrice renders a price for display: "CHF 500'000" for positive
// amounts, the on-request sentinel otherwise. Thousands are grouped with
// the Swiss apostrophe separator.
func FormatPrice(currency string, price int) string {
	if price <= 0 {
		return PriceOnRequest
	}
	return currency + " " + groupThousands(price)
}

// groupThousands formats n with an apostrophe every three digits,
// it-CH style.
func groupThousands(n int) string {
	digits := strconv.Itoa(n)
	if len(digits) <= 3 {
		return digits
	}

	var out []byte
	lead := len(digits) % 3
	if lead > 0 {
		out = append(out, digits[:lead]...)
	}
	for i := lead; i < len(digits); i += 3 {
		if len(out) > 0 {
			out = append(out, '\'')
		}
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}
