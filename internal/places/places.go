// Package places wraps the Google Maps geocoding and nearby-search APIs for
// local-information lookups (restaurants, groceries, transit) around a campus
// or neighborhood.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultNearbyURL  = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

	maxResults = 10
)

// Hyde Park is home turf; geocoding failures fall back here rather than
// failing the whole advisory request.
var defaultCoords = LatLng{Lat: 41.8781, Lng: -87.6298}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Place struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"userRatingsTotal"`
	PriceLevel       int      `json:"priceLevel"`
	Types            []string `json:"types"`
	OpenNow          bool     `json:"openNow"`
	Location         LatLng   `json:"location"`
}

type Query struct {
	Location  string // city or neighborhood, e.g. "Hyde Park, Chicago"
	PlaceType string // Google place type, e.g. "restaurant"
	Radius    int    // meters
}

type Client struct {
	apiKey     string
	httpClient *http.Client
	geocodeURL string
	nearbyURL  string
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		geocodeURL: defaultGeocodeURL,
		nearbyURL:  defaultNearbyURL,
	}
}

// NewClientWithBaseURLs is used by tests to point the client at a fake server.
func NewClientWithBaseURLs(apiKey, geocodeURL, nearbyURL string) *Client {
	c := NewClient(apiKey)
	c.geocodeURL = geocodeURL
	c.nearbyURL = nearbyURL
	return c
}

// Geocode resolves a free-form location to coordinates, defaulting to
// Chicago when the API has no answer.
func (c *Client) Geocode(ctx context.Context, location string) (LatLng, error) {
	params := url.Values{}
	params.Set("address", location)
	params.Set("key", c.apiKey)

	var body struct {
		Results []struct {
			Geometry struct {
				Location LatLng `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.geocodeURL, params, &body); err != nil {
		return defaultCoords, nil
	}
	if len(body.Results) == 0 {
		return defaultCoords, nil
	}
	return body.Results[0].Geometry.Location, nil
}

// Nearby searches for places of the given type around the query location.
func (c *Client) Nearby(ctx context.Context, q Query) ([]Place, error) {
	location := q.Location
	if location == "" {
		location = "Chicago"
	}
	coords, err := c.Geocode(ctx, location)
	if err != nil {
		coords = defaultCoords
	}

	radius := q.Radius
	if radius <= 0 {
		radius = 1000
	}
	placeType := q.PlaceType
	if placeType == "" {
		placeType = "restaurant"
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", coords.Lat, coords.Lng))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("type", placeType)
	params.Set("key", c.apiKey)

	var body struct {
		Results []struct {
			PlaceID          string   `json:"place_id"`
			Name             string   `json:"name"`
			Vicinity         string   `json:"vicinity"`
			Rating           float64  `json:"rating"`
			UserRatingsTotal int      `json:"user_ratings_total"`
			PriceLevel       int      `json:"price_level"`
			Types            []string `json:"types"`
			Geometry         struct {
				Location LatLng `json:"location"`
			} `json:"geometry"`
			OpeningHours struct {
				OpenNow bool `json:"open_now"`
			} `json:"opening_hours"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.nearbyURL, params, &body); err != nil {
		return nil, fmt.Errorf("error fetching place data: %w", err)
	}

	results := body.Results
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		loc := r.Geometry.Location
		if loc.Lat == 0 && loc.Lng == 0 {
			loc = coords
		}
		places = append(places, Place{
			ID:               r.PlaceID,
			Name:             r.Name,
			Address:          r.Vicinity,
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
			PriceLevel:       r.PriceLevel,
			Types:            r.Types,
			OpenNow:          r.OpeningHours.OpenNow,
			Location:         loc,
		})
	}
	return places, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
