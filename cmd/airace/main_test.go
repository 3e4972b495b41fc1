package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeCmd_Flags(t *testing.T) {
	cmd := scrapeCmd()

	for _, name := range []string{"basic", "full", "enrich", "persist", "max-col-width"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestScrapeCmd_BasicAndFullAreExclusive(t *testing.T) {
	cmd := scrapeCmd()

	require.NoError(t, cmd.Flags().Set("basic", "true"))
	require.NoError(t, cmd.Flags().Set("full", "true"))
	assert.Error(t, cmd.ValidateFlagGroups())
}
