package splunk

import "encoding/json"

// feedResponse is the generic envelope Splunk returns for entity
// collections when output_mode=json (indexes, saved searches, apps,
// server info, job status).
type feedResponse struct {
	Entry []feedEntry `json:"entry"`
}

// feedEntry is a single entity inside a feedResponse.
type feedEntry struct {
	Name    string          `json:"name"`
	ID      string          `json:"id"`
	Author  string          `json:"author"`
	ACL     entryACL        `json:"acl"`
	Content json.RawMessage `json:"content"`
}

type entryACL struct {
	App   string `json:"app"`
	Owner string `json:"owner"`
}

// jobContent is the content block of a search job status entry.
//
// DispatchState values observed from Splunk: QUEUED, PARSING, RUNNING,
// FINALIZING, DONE, FAILED, PAUSED. IsDone/IsFailed are authoritative;
// DispatchState is kept for diagnostics.
type jobContent struct {
	SID           string       `json:"sid"`
	DispatchState string       `json:"dispatchState"`
	IsDone        bool         `json:"isDone"`
	IsFailed      bool         `json:"isFailed"`
	IsFinalized   bool         `json:"isFinalized"`
	DoneProgress  float64      `json:"doneProgress"`
	ResultCount   int          `json:"resultCount"`
	EventCount    int          `json:"eventCount"`
	RunDuration   float64      `json:"runDuration"`
	Messages      []jobMessage `json:"messages"`
}

// jobMessage is a diagnostic message attached to a job or results page.
type jobMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// newJobResponse is the body returned when a search job is created.
type newJobResponse struct {
	SID string `json:"sid"`
}

// resultsPage is one page of GET .../results output.
type resultsPage struct {
	Preview    bool             `json:"preview"`
	InitOffset int              `json:"init_offset"`
	Messages   []jobMessage     `json:"messages"`
	Results    []map[string]any `json:"results"`
}

// IndexInfo describes one Splunk index.
type IndexInfo struct {
	Name            string  `json:"name"`
	CurrentDBSizeMB float64 `json:"current_db_size_mb"`
	MaxDataSize     string  `json:"max_data_size"`
	TotalEventCount int64   `json:"total_event_count"`
	Disabled        bool    `json:"disabled"`
}

// indexContent is the wire shape of an index entry's content block.
type indexContent struct {
	CurrentDBSizeMB float64 `json:"currentDBSizeMB"`
	MaxDataSize     string  `json:"maxDataSize"`
	TotalEventCount int64   `json:"totalEventCount"`
	Disabled        bool    `json:"disabled"`
}

// SavedSearchInfo describes one saved search.
type SavedSearchInfo struct {
	Name              string `json:"name"`
	Search            string `json:"search"`
	Description       string `json:"description"`
	Owner             string `json:"owner"`
	App               string `json:"app"`
	Disabled          bool   `json:"disabled"`
	CronSchedule      string `json:"cron_schedule"`
	NextScheduledTime string `json:"next_scheduled_time"`
}

type savedSearchContent struct {
	Search            string `json:"search"`
	Description       string `json:"description"`
	Disabled          bool   `json:"disabled"`
	CronSchedule      string `json:"cron_schedule"`
	NextScheduledTime string `json:"next_scheduled_time"`
}

// AppInfo describes one installed Splunk application.
type AppInfo struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	Disabled    bool   `json:"disabled"`
	Configured  bool   `json:"configured"`
}

type appContent struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Disabled    bool   `json:"disabled"`
	Configured  bool   `json:"configured"`
	Visible     *bool  `json:"visible"`
}

// ServerInfo describes the remote Splunk instance.
type ServerInfo struct {
	Version      string `json:"version"`
	Build        string `json:"build"`
	ServerName   string `json:"server_name"`
	Host         string `json:"host"`
	ProductType  string `json:"product_type"`
	LicenseState string `json:"license_state"`
	Mode         string `json:"mode"`
	StartupTime  int64  `json:"startup_time"`
}

type serverInfoContent struct {
	Version      string `json:"version"`
	Build        string `json:"build"`
	ServerName   string `json:"serverName"`
	Host         string `json:"host"`
	ProductType  string `json:"product_type"`
	LicenseState string `json:"license_state"`
	Mode         string `json:"mode"`
	StartupTime  int64  `json:"startup_time"`
}
