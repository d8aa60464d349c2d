// Package listings searches rental properties through the Zillow API on
// RapidAPI (propertyExtendedSearch endpoint).
package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultBaseURL = "https://zillow-com1.p.rapidapi.com/propertyExtendedSearch"
	rapidAPIHost   = "zillow-com1.p.rapidapi.com"

	maxResults = 10
)

type Property struct {
	ID           string  `json:"id"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zipcode      string  `json:"zipcode"`
	Price        float64 `json:"price"`
	Bedrooms     float64 `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	LivingArea   float64 `json:"livingArea"`
	PropertyType string  `json:"propertyType"`
	URL          string  `json:"url"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

type Query struct {
	Location     string
	PropertyType string // "Apartment", "House", ...
	MinPrice     int
	MaxPrice     int
	Bedrooms     int
}

type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

func (c *Client) Search(ctx context.Context, q Query) ([]Property, error) {
	location := q.Location
	if location == "" {
		location = "Chicago"
	}
	propertyType := q.PropertyType
	if propertyType == "" {
		propertyType = "Apartment"
	}

	params := url.Values{}
	params.Set("location", location)
	params.Set("home_type", propertyType)
	if q.MinPrice > 0 {
		params.Set("price_min", strconv.Itoa(q.MinPrice))
	}
	if q.MaxPrice > 0 {
		params.Set("price_max", strconv.Itoa(q.MaxPrice))
	}
	if q.Bedrooms > 0 {
		params.Set("beds_min", strconv.Itoa(q.Bedrooms))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching property data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching property data: unexpected status %s", resp.Status)
	}

	var body struct {
		Props []struct {
			Zpid    json.Number `json:"zpid"`
			Address struct {
				StreetAddress string `json:"streetAddress"`
				City          string `json:"city"`
				State         string `json:"state"`
				Zipcode       string `json:"zipcode"`
			} `json:"address"`
			Price        float64     `json:"price"`
			Bedrooms     float64     `json:"bedrooms"`
			Bathrooms    float64     `json:"bathrooms"`
			LivingArea   float64     `json:"livingArea"`
			PropertyType string      `json:"propertyType"`
			YearBuilt    json.Number `json:"yearBuilt"`
			DetailURL    string      `json:"detailUrl"`
			Latitude     float64     `json:"latitude"`
			Longitude    float64     `json:"longitude"`
		} `json:"props"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding property data: %w", err)
	}

	props := body.Props
	if len(props) > maxResults {
		props = props[:maxResults]
	}

	properties := make([]Property, 0, len(props))
	for _, p := range props {
		properties = append(properties, Property{
			ID:           p.Zpid.String(),
			Address:      p.Address.StreetAddress,
			City:         p.Address.City,
			State:        p.Address.State,
			Zipcode:      p.Address.Zipcode,
			Price:        p.Price,
			Bedrooms:     p.Bedrooms,
			Bathrooms:    p.Bathrooms,
			LivingArea:   p.LivingArea,
			PropertyType: p.PropertyType,
			URL:          p.DetailURL,
			Lat:          p.Latitude,
			Lng:          p.Longitude,
		})
	}
	return properties, nil
}
