package splunk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ListIndexes returns the indexes visible to the credential, sorted by
// name. pattern optionally filters names with glob syntax ("main*",
// "*security*"); empty matches everything.
func (c *Client) ListIndexes(ctx context.Context, pattern string) ([]IndexInfo, error) {
	feed, err := c.fetchFeed(ctx, "/services/data/indexes", nil)
	if err != nil {
		return nil, classify("list indexes", err)
	}

	indexes := make([]IndexInfo, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		if pattern != "" {
			ok, matchErr := doublestar.Match(pattern, entry.Name)
			if matchErr != nil {
				return nil, newError(KindValidation,
					fmt.Sprintf("bad index pattern %q", pattern), matchErr)
			}
			if !ok {
				continue
			}
		}

		var content indexContent
		if err := json.Unmarshal(entry.Content, &content); err != nil {
			return nil, classify("list indexes", fmt.Errorf("decode index %s: %w", entry.Name, err))
		}
		indexes = append(indexes, IndexInfo{
			Name:            entry.Name,
			CurrentDBSizeMB: content.CurrentDBSizeMB,
			MaxDataSize:     content.MaxDataSize,
			TotalEventCount: content.TotalEventCount,
			Disabled:        content.Disabled,
		})
	}

	sort.Slice(indexes, func(i, k int) bool { return indexes[i].Name < indexes[k].Name })
	return indexes, nil
}

// ListSavedSearches returns saved searches sorted by name. name is a
// case-insensitive substring filter; owner narrows the listing
// server-side. Both are optional.
func (c *Client) ListSavedSearches(ctx context.Context, name, owner string) ([]SavedSearchInfo, error) {
	var params url.Values
	if owner != "" {
		params = url.Values{"owner": {owner}}
	}
	feed, err := c.fetchFeed(ctx, "/services/saved/searches", params)
	if err != nil {
		return nil, classify("list saved searches", err)
	}

	searches := make([]SavedSearchInfo, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		if name != "" && !strings.Contains(strings.ToLower(entry.Name), strings.ToLower(name)) {
			continue
		}

		var content savedSearchContent
		if err := json.Unmarshal(entry.Content, &content); err != nil {
			return nil, classify("list saved searches", fmt.Errorf("decode saved search %s: %w", entry.Name, err))
		}
		searches = append(searches, SavedSearchInfo{
			Name:              entry.Name,
			Search:            content.Search,
			Description:       content.Description,
			Owner:             entry.Author,
			App:               entry.ACL.App,
			Disabled:          content.Disabled,
			CronSchedule:      content.CronSchedule,
			NextScheduledTime: content.NextScheduledTime,
		})
	}

	sort.Slice(searches, func(i, k int) bool { return searches[i].Name < searches[k].Name })
	return searches, nil
}

// ListApps returns installed applications sorted by name. With
// visibleOnly set, apps flagged invisible are dropped.
func (c *Client) ListApps(ctx context.Context, visibleOnly bool) ([]AppInfo, error) {
	feed, err := c.fetchFeed(ctx, "/services/apps/local", nil)
	if err != nil {
		return nil, classify("list apps", err)
	}

	apps := make([]AppInfo, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		var content appContent
		if err := json.Unmarshal(entry.Content, &content); err != nil {
			return nil, classify("list apps", fmt.Errorf("decode app %s: %w", entry.Name, err))
		}
		if visibleOnly && content.Visible != nil && !*content.Visible {
			continue
		}
		apps = append(apps, AppInfo{
			Name:        entry.Name,
			Label:       content.Label,
			Description: content.Description,
			Version:     content.Version,
			Author:      entry.Author,
			Disabled:    content.Disabled,
			Configured:  content.Configured,
		})
	}

	sort.Slice(apps, func(i, k int) bool { return apps[i].Name < apps[k].Name })
	return apps, nil
}

// GetServerInfo returns version and health details for the remote
// instance.
func (c *Client) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	feed, err := c.fetchFeed(ctx, "/services/server/info", nil)
	if err != nil {
		return nil, classify("server info", err)
	}
	if len(feed.Entry) == 0 {
		return nil, newError(KindPlatform, "server info response carried no entries", nil)
	}

	var content serverInfoContent
	if err := json.Unmarshal(feed.Entry[0].Content, &content); err != nil {
		return nil, classify("server info", fmt.Errorf("decode server info: %w", err))
	}
	return &ServerInfo{
		Version:      content.Version,
		Build:        content.Build,
		ServerName:   content.ServerName,
		Host:         content.Host,
		ProductType:  content.ProductType,
		LicenseState: content.LicenseState,
		Mode:         content.Mode,
		StartupTime:  content.StartupTime,
	}, nil
}

// fetchFeed retrieves and decodes one entity collection.
func (c *Client) fetchFeed(ctx context.Context, path string, params url.Values) (*feedResponse, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return &feed, nil
}
