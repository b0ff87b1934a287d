package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycoledger/mycoledger/internal/app"
	_ "github.com/mycoledger/mycoledger/internal/testing/guard"
)

func TestWorkerReturnsInTestMode(t *testing.T) {
	app.RefreshTestMode()
	require.True(t, app.InTestMode())
	require.NotPanics(t, main)
}
