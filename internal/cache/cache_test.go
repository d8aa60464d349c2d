package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsDeterministic(t *testing.T) {
	type params struct {
		Location string
		MaxPrice int
	}

	a := Key("housing", params{Location: "Hyde Park", MaxPrice: 1500})
	b := Key("housing", params{Location: "Hyde Park", MaxPrice: 1500})
	c := Key("housing", params{Location: "Evanston", MaxPrice: 1500})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "housing:")
}

func TestKeyPrefixSeparatesNamespaces(t *testing.T) {
	type params struct{ Location string }
	p := params{Location: "Hyde Park"}
	assert.NotEqual(t, Key("housing", p), Key("places", p))
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var out []string
	assert.False(t, c.GetJSON(ctx, "k", &out))
	assert.NotPanics(t, func() { c.SetJSON(ctx, "k", []string{"v"}) })
	assert.NoError(t, c.Close())
}
