package polymarket

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string. Any other JSON
// type decodes to false rather than failing the whole listing.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = false
		return nil
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. Gamma sends
// volume and liquidity both ways depending on the endpoint. Unparseable
// strings, non-finite values and other JSON types decode to zero rather than
// failing the whole listing.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	*f = 0
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexJSONString holds a field Gamma sends as a JSON-encoded string, such as
// outcomePrices. A value of any other JSON type is discarded so the record
// can still be normalized without it.
type flexJSONString struct {
	val *string
}

func (f *flexJSONString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		f.val = nil
		return nil
	}
	f.val = &s
	return nil
}

func (f *flexJSONString) ptr() *string {
	if f == nil {
		return nil
	}
	return f.val
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIMarket represents a market as returned by the Polymarket Gamma API.
// Optional fields are pointers so absence survives decoding.
type APIMarket struct {
	ID            string     `json:"id"`
	Question      *string    `json:"question"`
	Slug          string     `json:"slug"`
	ConditionID   string     `json:"conditionId"`
	ClobTokenIDs  *flexJSONString `json:"clobTokenIds"`  // JSON-encoded: e.g. "[\"123\",\"456\"]"
	OutcomePrices *flexJSONString `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	Volume        *flexFloat      `json:"volume"`
	Liquidity     *flexFloat      `json:"liquidity"`
	Active        *flexBool       `json:"active"`
	Closed        bool            `json:"closed"`
	Archived      bool            `json:"archived"`
	NegRisk       bool            `json:"negRisk"`
	EndDate       *string         `json:"endDate"`
	EndDateLegacy *string         `json:"end_date"`
	EndDateISO    *string         `json:"endDateIso"`
	Tags          []APITag        `json:"tags"`
}

// APITag is a category tag attached to a market.
type APITag struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// ToRawMarket converts an APIMarket to a domain.RawMarket without applying
// any defaults.
func (m *APIMarket) ToRawMarket() domain.RawMarket {
	raw := domain.RawMarket{
		ID:            m.ID,
		Question:      m.Question,
		ClobTokenIDs:  m.ClobTokenIDs.ptr(),
		OutcomePrices: m.OutcomePrices.ptr(),
		EndDate:       firstNonEmpty(m.EndDate, m.EndDateLegacy, m.EndDateISO),
	}
	if m.Volume != nil {
		v := float64(*m.Volume)
		raw.Volume = &v
	}
	if m.Liquidity != nil {
		l := float64(*m.Liquidity)
		raw.Liquidity = &l
	}
	if m.Active != nil {
		a := bool(*m.Active)
		raw.Active = &a
	}
	if len(m.Tags) > 0 {
		raw.Tags = make([]string, 0, len(m.Tags))
		for _, t := range m.Tags {
			raw.Tags = append(raw.Tags, t.Label)
		}
	}
	return raw
}

func firstNonEmpty(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
