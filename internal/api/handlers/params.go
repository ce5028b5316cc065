package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

// queryParams reads typed values from a query string, keeping the first
// parse failure as a validation error
type queryParams struct {
	values url.Values
	err    error
}

func newQueryParams(values url.Values) *queryParams {
	return &queryParams{values: values}
}

func (p *queryParams) fail(name, raw string) {
	if p.err == nil {
		p.err = apperrors.NewValidationErrorf("invalid value %q for %s", raw, name)
	}
}

func (p *queryParams) String(name string) string {
	return strings.TrimSpace(p.values.Get(name))
}

func (p *queryParams) Int(name string, def int) int {
	raw := p.String(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(name, raw)
		return def
	}
	return v
}

func (p *queryParams) Float(name string) *float64 {
	raw := p.String(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(name, raw)
		return nil
	}
	return &v
}

func (p *queryParams) Bool(name string) *bool {
	raw := p.String(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, raw)
		return nil
	}
	return &v
}

func (p *queryParams) Flag(name string) bool {
	v := p.Bool(name)
	return v != nil && *v
}

func (p *queryParams) Time(name string) *time.Time {
	raw := p.String(name)
	if raw == "" {
		return nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		p.fail(name, raw)
		return nil
	}
	return &v
}

// List accepts both repeated keys and comma separated values
func (p *queryParams) List(name string) []string {
	var out []string
	for _, raw := range p.values[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func listOf[T ~string](values []string) []T {
	if len(values) == 0 {
		return nil
	}
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}

func (p *queryParams) Err() error {
	return p.err
}
