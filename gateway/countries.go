package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/apexdefense/agd/models"
)

func pageParams(skip, limit int) url.Values {
	v := url.Values{}
	if skip > 0 {
		v.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

// Countries lists countries ordered by name.
func (c *Client) Countries(ctx context.Context, q models.CountryQuery) ([]models.Country, error) {
	params := pageParams(q.Skip, q.Limit)
	if q.Region != "" {
		params.Set("region", q.Region)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	var out []models.Country
	if err := c.Request(ctx, http.MethodGet, "/countries/", nil, params, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Country fetches one country with its military branches.
func (c *Client) Country(ctx context.Context, id string) (*models.Country, error) {
	var out models.Country
	if err := c.Request(ctx, http.MethodGet, "/countries/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CountryByISO fetches a country by its ISO 3166 alpha-3 code.
func (c *Client) CountryByISO(ctx context.Context, iso string) (*models.Country, error) {
	var out models.Country
	if err := c.Request(ctx, http.MethodGet, "/countries/iso/"+url.PathEscape(iso), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CountryForceSummary fetches aggregated force numbers for a country.
func (c *Client) CountryForceSummary(ctx context.Context, id string) (*models.ForceSummary, error) {
	var out models.ForceSummary
	if err := c.Request(ctx, http.MethodGet, "/countries/"+url.PathEscape(id)+"/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CountryBranches lists a country's branches with equipment.
func (c *Client) CountryBranches(ctx context.Context, id string) ([]models.MilitaryBranch, error) {
	var out []models.MilitaryBranch
	if err := c.Request(ctx, http.MethodGet, "/countries/"+url.PathEscape(id)+"/branches", nil, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// nonNil turns a decoded JSON null or missing list into an empty slice.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
