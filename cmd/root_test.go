package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["resolve"])
	assert.True(t, names["batch"])
	assert.True(t, names["serve"])
}

func TestResolveCmd_Flags(t *testing.T) {
	assert.NotNil(t, resolveCmd.Flags().Lookup("name"))
	assert.NotNil(t, resolveCmd.Flags().Lookup("industry"))
	assert.NotNil(t, resolveCmd.Flags().Lookup("region"))
	assert.NotNil(t, resolveCmd.Flags().Lookup("dry-run"))
}

func TestBatchCmd_Flags(t *testing.T) {
	assert.NotNil(t, batchCmd.Flags().Lookup("csv"))
	assert.NotNil(t, batchCmd.Flags().Lookup("limit"))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, 202, map[string]string{"status": "accepted"})

	assert.Equal(t, 202, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "accepted", body["status"])
}
