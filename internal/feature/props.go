package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/unicode/norm"
)

// normalizeName trims and NFC-normalises a feature name so composed and
// decomposed spellings ("Bærum") compare equal.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeName exposes the name normalisation used for loaded features.
func NormalizeName(s string) string {
	return normalizeName(s)
}

// stringProp returns a string property. Missing keys and non-string values
// report false rather than panicking like Properties.MustString.
func stringProp(props geojson.Properties, key string) (string, bool) {
	if props == nil {
		return "", false
	}
	v, ok := props[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// featureID stringifies a GeoJSON id, falling back to prefix-index.
func featureID(id any, prefix string, idx int) string {
	switch v := id.(type) {
	case nil:
		return prefix + "-" + strconv.Itoa(idx)
	case string:
		if v == "" {
			return prefix + "-" + strconv.Itoa(idx)
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
