package render

import (
	"net/url"
	"strconv"

	"docraster/internal/pkg/errors"
)

// Scale bounds accepted by the pipeline, inclusive.
const (
	MinScale = 0.1
	MaxScale = 10.0
)

// Params are the resolved render parameters for one request.
type Params struct {
	Format OutputFormat
	// Scale is the zoom factor; zero means native 1x rendering.
	Scale float64
	// Pages is nil when the whole document is selected.
	Pages *PageSelection
}

// ResolveParams parses format, pages and scale from query parameters.
// It is pure: page bounds are checked later against the loaded document.
func ResolveParams(q url.Values) (Params, error) {
	var p Params

	format, err := ParseFormat(q.Get("format"))
	if err != nil {
		return Params{}, errors.Validation(err.Error())
	}
	p.Format = format

	if raw := q.Get("scale"); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Params{}, errors.Validationf("invalid scale %q", raw)
		}
		if scale < MinScale || scale > MaxScale {
			return Params{}, errors.Validationf("scale must be between %v and %v, got %v", MinScale, MaxScale, scale)
		}
		p.Scale = scale
	}

	if raw := q.Get("pages"); raw != "" {
		pages, err := ParsePageSelection(raw)
		if err != nil {
			return Params{}, err
		}
		p.Pages = pages
	}

	return p, nil
}
