package rewards

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("token account not found")
	ErrInsufficient = errors.New("insufficient tokens")
	ErrBadRequest   = errors.New("student_name, gift and a positive cost are required")
	ErrPriceChanged = errors.New("cost does not match catalogue price")
)

type Account struct {
	StudentName        string `json:"student_name"`
	Tokens             int64  `json:"tokens"`
	TotalApprovedNotes int64  `json:"total_approved_notes"`
	CreatedAt          int64  `json:"created_at"`
	UpdatedAt          int64  `json:"updated_at"`
}

type Redemption struct {
	StudentName  string `json:"student_name"`
	Tokens       int64  `json:"tokens"`
	RedeemedGift string `json:"redeemed_gift"`
	Cost         int64  `json:"cost"`
}

type Gift struct {
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

// Catalog maps gift names to their token price.
type Catalog map[string]int64

func DefaultCatalog() Catalog {
	return Catalog{
		"Amazon":          250,
		"Flipkart":        250,
		"Google Play":     300,
		"Nike":            350,
		"Paytm":           200,
		"Spotify Premium": 300,
	}
}

// Price looks a gift up case-insensitively.
func (c Catalog) Price(gift string) (int64, bool) {
	for name, cost := range c {
		if strings.EqualFold(name, strings.TrimSpace(gift)) {
			return cost, true
		}
	}
	return 0, false
}

// List returns the catalogue cheapest first, ties by name.
func (c Catalog) List() []Gift {
	out := make([]Gift, 0, len(c))
	for name, cost := range c {
		out = append(out, Gift{Name: name, Cost: cost})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		return out[i].Name < out[j].Name
	})
	return out
}
