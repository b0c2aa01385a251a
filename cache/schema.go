package cache

import (
	"fmt"
	"math"

	"github.com/use-agent/pagegrab/models"
)

// stringFields lists the top-level keys that must hold strings.
var stringFields = []string{"url", "title", "metaDescription", "content"}

// Validate checks that v, a generic decoded JSON value, has the full
// ScrapedContent shape:
//
//	url, title, metaDescription, content   string
//	headings                               object with string h1 and h2
//	error                                  null or string
//	cachedAt                               absent, null or a non-negative number
//
// Unknown keys are ignored.
func Validate(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: expected object, got %T", ErrInvalidEntry, v)
	}

	for _, name := range stringFields {
		if _, ok := obj[name].(string); !ok {
			return fmt.Errorf("%w: field %q must be a string", ErrInvalidEntry, name)
		}
	}

	headings, ok := obj["headings"].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: field \"headings\" must be an object", ErrInvalidEntry)
	}
	for _, name := range []string{"h1", "h2"} {
		if _, ok := headings[name].(string); !ok {
			return fmt.Errorf("%w: field \"headings.%s\" must be a string", ErrInvalidEntry, name)
		}
	}

	errVal, present := obj["error"]
	if !present {
		return fmt.Errorf("%w: field \"error\" is missing", ErrInvalidEntry)
	}
	if errVal != nil {
		if _, ok := errVal.(string); !ok {
			return fmt.Errorf("%w: field \"error\" must be null or a string", ErrInvalidEntry)
		}
	}

	if at, present := obj["cachedAt"]; present && at != nil {
		n, ok := toFloat(at)
		if !ok || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%w: field \"cachedAt\" must be a non-negative number", ErrInvalidEntry)
		}
	}
	return nil
}

// fromGeneric builds the typed entity from a value that passed Validate.
func fromGeneric(obj map[string]any) models.ScrapedContent {
	headings := obj["headings"].(map[string]any)
	c := models.ScrapedContent{
		URL:   obj["url"].(string),
		Title: obj["title"].(string),
		Headings: models.Headings{
			H1: headings["h1"].(string),
			H2: headings["h2"].(string),
		},
		MetaDescription: obj["metaDescription"].(string),
		Content:         obj["content"].(string),
	}
	if reason, ok := obj["error"].(string); ok {
		c.Error = &reason
	}
	if n, ok := toFloat(obj["cachedAt"]); ok {
		c.CachedAt = int64(n)
	}
	return c
}

// toFloat accepts the numeric types produced by encoding/json and by
// backends that hand back pre-decoded values.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
