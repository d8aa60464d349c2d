package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowErrorAndClear(t *testing.T) {
	n := NewNotifier(0)

	gen := n.ShowError("first")
	assert.Equal(t, "first", n.Error())

	n.ClearIf(gen)
	assert.Empty(t, n.Error())
}

func TestStaleClearIsNoOp(t *testing.T) {
	n := NewNotifier(0)

	first := n.ShowError("first")
	n.ShowError("second")

	// The first error's clear arrives after a newer error replaced it; the
	// newer error must stay on screen for its full window.
	n.ClearIf(first)
	assert.Equal(t, "second", n.Error())
}

func TestTimeoutAutoClears(t *testing.T) {
	n := NewNotifier(20 * time.Millisecond)

	n.ShowError("transient")
	assert.Equal(t, "transient", n.Error())

	require.Eventually(t, func() bool { return n.Error() == "" },
		time.Second, 5*time.Millisecond)
}

func TestNewerErrorOutlivesOlderTimeout(t *testing.T) {
	n := NewNotifier(30 * time.Millisecond)

	n.ShowError("first")
	time.Sleep(15 * time.Millisecond)
	n.ShowError("second")

	// First error's timer fires around t=30ms; second must survive it.
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, "second", n.Error())

	require.Eventually(t, func() bool { return n.Error() == "" },
		time.Second, 5*time.Millisecond)
}

func TestLoadingFlag(t *testing.T) {
	n := NewNotifier(0)
	assert.False(t, n.Loading())

	n.StartLoading()
	assert.True(t, n.Loading())

	n.StopLoading()
	assert.False(t, n.Loading())
}

func TestOnChangeFires(t *testing.T) {
	n := NewNotifier(0)
	var calls int
	n.OnChange(func() { calls++ })

	gen := n.ShowError("x")
	n.ClearIf(gen)
	n.StartLoading()
	n.StopLoading()

	assert.Equal(t, 4, calls)
}
