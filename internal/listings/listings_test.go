package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-RapidAPI-Key"))
		assert.NotEmpty(t, r.Header.Get("X-RapidAPI-Host"))

		q := r.URL.Query()
		assert.Equal(t, "Hyde Park, Chicago", q.Get("location"))
		assert.Equal(t, "Apartment", q.Get("home_type"))
		assert.Equal(t, "1500", q.Get("price_max"))
		assert.Equal(t, "2", q.Get("beds_min"))
		assert.Empty(t, q.Get("price_min"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"props": []map[string]interface{}{
				{
					"zpid": 12345,
					"address": map[string]string{
						"streetAddress": "5500 S Everett Ave",
						"city":          "Chicago",
						"state":         "IL",
						"zipcode":       "60637",
					},
					"price":     1400.0,
					"bedrooms":  2.0,
					"bathrooms": 1.0,
					"detailUrl": "/homedetails/12345",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("key", srv.URL)
	props, err := c.Search(context.Background(), Query{Location: "Hyde Park, Chicago", MaxPrice: 1500, Bedrooms: 2})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "12345", props[0].ID)
	assert.Equal(t, "5500 S Everett Ave", props[0].Address)
	assert.Equal(t, "60637", props[0].Zipcode)
	assert.Equal(t, 1400.0, props[0].Price)
}

func TestSearchCapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var props []map[string]interface{}
		for i := 0; i < 30; i++ {
			props = append(props, map[string]interface{}{"zpid": fmt.Sprintf("%d", i)})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"props": props})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("key", srv.URL)
	props, err := c.Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, props, 10)
}

func TestSearchNonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("key", srv.URL)
	_, err := c.Search(context.Background(), Query{})
	assert.Error(t, err)
}
