package ui

import "strings"

// String table keys.
const (
	keyOkButtonTitle      = "keyOkButtonTitle"
	keyErrorLoadingData   = "keyErrorLoadingData"
	keyErrorSavingData    = "keyErrorSavingData"
	keyLoading            = "keyLoading"
	keyRefreshing         = "keyRefreshing"
	keyNoProducts         = "keyNoProducts"
	keyKPICompletedOrders = "keyKPICompletedOrders"
	keyOffline            = "keyOffline"
	keyOnline             = "keyOnline"
	keySaving             = "keySaving"
)

var defaultStrings = map[string]string{
	keyOkButtonTitle:      "OK",
	keyErrorLoadingData:   "Loading data failed!",
	keyErrorSavingData:    "Saving data failed!",
	keyLoading:            "Loading...",
	keyRefreshing:         "Refreshing",
	keyNoProducts:         "No products",
	keyKPICompletedOrders: "Completed sales orders",
	keyOffline:            "OFFLINE",
	keyOnline:             "ONLINE",
	keySaving:             "Saving...",
}

// Catalog resolves user-facing strings. The zero value serves the
// built-in English table.
type Catalog struct {
	overrides map[string]string
}

// NewCatalog returns a catalog where non-blank overrides replace the
// built-in entries.
func NewCatalog(overrides map[string]string) Catalog {
	clean := make(map[string]string, len(overrides))
	for k, v := range overrides {
		if strings.TrimSpace(v) == "" {
			continue
		}
		clean[k] = v
	}
	return Catalog{overrides: clean}
}

// T returns the string for key, falling back to the key itself.
func (c Catalog) T(key string) string {
	if v, ok := c.overrides[key]; ok {
		return v
	}
	if v, ok := defaultStrings[key]; ok {
		return v
	}
	return key
}

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}
