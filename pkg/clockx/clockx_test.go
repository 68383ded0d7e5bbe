package clockx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yli59577/puyuann/pkg/clockx"
)

func TestSystemReportsInFixedZone(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	c := clockx.NewSystem(loc)

	now := c.Now()
	require.Equal(t, loc, now.Location())
	require.WithinDuration(t, time.Now(), now, time.Second)
}

func TestSystemZeroValueIsUTC(t *testing.T) {
	var c clockx.System
	require.Equal(t, time.UTC, c.Now().Location())
	require.Equal(t, time.UTC, c.Location())
}

func TestLoadSystem(t *testing.T) {
	c, err := clockx.LoadSystem("")
	require.NoError(t, err)
	require.Equal(t, time.UTC, c.Location())

	_, err = clockx.LoadSystem("Not/AZone")
	require.Error(t, err)
}

func TestManual(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := clockx.NewManual(start)
	require.Equal(t, start, m.Now())

	// Advance is cumulative
	m.Advance(5 * time.Minute)
	require.Equal(t, start.Add(5*time.Minute), m.Advance(0))

	m.Set(start)
	require.Equal(t, start, m.Now())
}
