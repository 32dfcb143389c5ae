package espm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntitySet names a collection exposed by the ESPM service. It doubles as
// the query scope a list screen represents.
type EntitySet string

const (
	EntitySetProducts          EntitySet = "Products"
	EntitySetSalesOrderHeaders EntitySet = "SalesOrderHeaders"
)

// Life cycle codes used by SalesOrderHeaders.
const (
	LifeCycleNew        = "N"
	LifeCycleInProcess  = "P"
	LifeCycleCompleted  = "C"
	LifeCycleCancelled  = "X"
	odataDatePrefix     = "/Date("
	odataDateSuffix     = ")/"
	timestampLayoutNoTZ = "2006-01-02T15:04:05"
)

// Product mirrors the ESPM Product entity.
type Product struct {
	ProductID        string          `json:"ProductId"`
	Name             string          `json:"Name"`
	ShortDescription string          `json:"ShortDescription"`
	CategoryName     string          `json:"CategoryName"`
	Price            decimal.Decimal `json:"Price"`
	CurrencyCode     string          `json:"CurrencyCode"`
	DimensionDepth   decimal.Decimal `json:"DimensionDepth"`
	DimensionHeight  decimal.Decimal `json:"DimensionHeight"`
	DimensionWidth   decimal.Decimal `json:"DimensionWidth"`
	DimensionUnit    string          `json:"DimensionUnit"`
	Weight           decimal.Decimal `json:"Weight"`
	WeightUnit       string          `json:"WeightUnit"`
	UpdatedTimestamp Time            `json:"UpdatedTimestamp"`
}

// DisplayName returns the name, or the key when the name is blank.
func (p Product) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.ProductID
}

// FormattedPrice renders the price with its currency code.
func (p Product) FormattedPrice() string {
	price := p.Price.StringFixed(2)
	if p.CurrencyCode == "" {
		return price
	}
	return price + " " + p.CurrencyCode
}

// Dimensions renders "D x H x W unit", or an empty string when unknown.
func (p Product) Dimensions() string {
	if p.DimensionDepth.IsZero() && p.DimensionHeight.IsZero() && p.DimensionWidth.IsZero() {
		return ""
	}
	dims := fmt.Sprintf("%s x %s x %s", p.DimensionDepth.String(), p.DimensionHeight.String(), p.DimensionWidth.String())
	if p.DimensionUnit != "" {
		dims += " " + p.DimensionUnit
	}
	return dims
}

// SalesOrderHeader mirrors the subset of the ESPM SalesOrderHeader entity
// the KPI header needs.
type SalesOrderHeader struct {
	SalesOrderID        string          `json:"SalesOrderId"`
	CustomerID          string          `json:"CustomerId"`
	LifeCycleStatus     string          `json:"LifeCycleStatus"`
	LifeCycleStatusName string          `json:"LifeCycleStatusName"`
	GrossAmount         decimal.Decimal `json:"GrossAmount"`
	CurrencyCode        string          `json:"CurrencyCode"`
	CreatedAt           Time            `json:"CreatedAt"`
}

// Completed reports whether the order reached its final life cycle state.
func (s SalesOrderHeader) Completed() bool {
	return strings.EqualFold(strings.TrimSpace(s.LifeCycleStatus), LifeCycleCompleted)
}

// Time decodes both OData V2 "/Date(ms)/" literals and ISO 8601 timestamps.
// It encodes as RFC 3339 so cached documents stay readable.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	parsed, err := parseTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if strings.HasPrefix(value, odataDatePrefix) && strings.HasSuffix(value, odataDateSuffix) {
		body := strings.TrimSuffix(strings.TrimPrefix(value, odataDatePrefix), odataDateSuffix)
		if body == "" {
			return time.Time{}, fmt.Errorf("parse timestamp %q: empty date literal", value)
		}
		// V2 literals may carry an offset suffix ("+0060"); the millis are UTC.
		if idx := strings.IndexAny(body[1:], "+-"); idx >= 0 {
			body = body[:idx+1]
		}
		ms, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, timestampLayoutNoTZ} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unsupported format", value)
}
