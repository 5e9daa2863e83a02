package splunk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexesFeed = `{
  "entry": [
    {"name": "main", "content": {"currentDBSizeMB": 512.5, "maxDataSize": "auto", "totalEventCount": 154569, "disabled": false}},
    {"name": "_internal", "content": {"currentDBSizeMB": 2048, "maxDataSize": "auto_high_volume", "totalEventCount": 990001, "disabled": false}},
    {"name": "security", "content": {"currentDBSizeMB": 64, "maxDataSize": "auto", "totalEventCount": 1200, "disabled": true}}
  ]
}`

const savedSearchesFeed = `{
  "entry": [
    {"name": "Errors last hour", "author": "admin", "acl": {"app": "search"},
     "content": {"search": "index=main level=ERROR", "description": "hourly errors", "disabled": false, "cron_schedule": "0 * * * *", "next_scheduled_time": "2026-08-29T12:00:00"}},
    {"name": "License usage", "author": "nobody", "acl": {"app": "splunk_instrumentation"},
     "content": {"search": "index=_internal source=*license*", "description": "", "disabled": false, "cron_schedule": "", "next_scheduled_time": ""}}
  ]
}`

const appsFeed = `{
  "entry": [
    {"name": "search", "author": "Splunk", "content": {"label": "Search & Reporting", "version": "9.2.1", "disabled": false, "configured": true, "visible": true}},
    {"name": "learned", "author": "Splunk", "content": {"label": "learned", "version": "1.0", "disabled": false, "configured": false, "visible": false}}
  ]
}`

const serverInfoFeed = `{
  "entry": [
    {"name": "server-info", "content": {"version": "9.2.1", "build": "78803f08aabb", "serverName": "splunk-idx-01",
     "host": "splunk-idx-01", "product_type": "enterprise", "license_state": "OK", "mode": "normal", "startup_time": 1756000000}}
  ]
}`

func listingsTestClient(t *testing.T, payloads map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{Host: "h", Port: 8089, Scheme: "http", Token: "tok"})
	require.NoError(t, err)
	client.SetBaseURL(srv.URL)
	return client
}

func TestListIndexes(t *testing.T) {
	client := listingsTestClient(t, map[string]string{"/services/data/indexes": indexesFeed})

	t.Run("all indexes sorted by name", func(t *testing.T) {
		indexes, err := client.ListIndexes(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, indexes, 3)
		assert.Equal(t, "_internal", indexes[0].Name)
		assert.Equal(t, "main", indexes[1].Name)
		assert.Equal(t, "security", indexes[2].Name)
		assert.Equal(t, 512.5, indexes[1].CurrentDBSizeMB)
		assert.Equal(t, int64(154569), indexes[1].TotalEventCount)
		assert.True(t, indexes[2].Disabled)
	})

	t.Run("glob pattern filter", func(t *testing.T) {
		indexes, err := client.ListIndexes(context.Background(), "*sec*")
		require.NoError(t, err)
		require.Len(t, indexes, 1)
		assert.Equal(t, "security", indexes[0].Name)
	})

	t.Run("prefix pattern", func(t *testing.T) {
		indexes, err := client.ListIndexes(context.Background(), "_*")
		require.NoError(t, err)
		require.Len(t, indexes, 1)
		assert.Equal(t, "_internal", indexes[0].Name)
	})

	t.Run("bad pattern is a validation error", func(t *testing.T) {
		_, err := client.ListIndexes(context.Background(), "[")
		var se *SearchError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, KindValidation, se.Kind)
	})
}

func TestListSavedSearches(t *testing.T) {
	client := listingsTestClient(t, map[string]string{"/services/saved/searches": savedSearchesFeed})

	t.Run("all saved searches", func(t *testing.T) {
		searches, err := client.ListSavedSearches(context.Background(), "", "")
		require.NoError(t, err)
		require.Len(t, searches, 2)
		assert.Equal(t, "Errors last hour", searches[0].Name)
		assert.Equal(t, "index=main level=ERROR", searches[0].Search)
		assert.Equal(t, "admin", searches[0].Owner)
		assert.Equal(t, "search", searches[0].App)
		assert.Equal(t, "0 * * * *", searches[0].CronSchedule)
	})

	t.Run("case-insensitive name filter", func(t *testing.T) {
		searches, err := client.ListSavedSearches(context.Background(), "license", "")
		require.NoError(t, err)
		require.Len(t, searches, 1)
		assert.Equal(t, "License usage", searches[0].Name)
	})
}

func TestListApps(t *testing.T) {
	client := listingsTestClient(t, map[string]string{"/services/apps/local": appsFeed})

	t.Run("visible only drops hidden apps", func(t *testing.T) {
		apps, err := client.ListApps(context.Background(), true)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, "search", apps[0].Name)
		assert.Equal(t, "Search & Reporting", apps[0].Label)
	})

	t.Run("all apps", func(t *testing.T) {
		apps, err := client.ListApps(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, apps, 2)
		assert.Equal(t, "learned", apps[0].Name)
	})
}

func TestGetServerInfo(t *testing.T) {
	client := listingsTestClient(t, map[string]string{"/services/server/info": serverInfoFeed})

	info, err := client.GetServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9.2.1", info.Version)
	assert.Equal(t, "splunk-idx-01", info.ServerName)
	assert.Equal(t, "enterprise", info.ProductType)
	assert.Equal(t, "OK", info.LicenseState)
	assert.Equal(t, int64(1756000000), info.StartupTime)
}

func TestListingsMapAuthFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"messages":[{"type":"ERROR","text":"insufficient permission"}]}`))
	}))
	defer srv.Close()

	client, err := New(Config{Host: "h", Port: 8089, Scheme: "http", Token: "tok"})
	require.NoError(t, err)
	client.SetBaseURL(srv.URL)

	_, err = client.ListIndexes(context.Background(), "")
	var se *SearchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindPermission, se.Kind)
}
