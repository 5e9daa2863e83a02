package splunk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// defaultPageSize is the internal offset/count page size used when
// collecting results. Independent of the caller's MaxCount.
const defaultPageSize = 1000

// partialResultError wraps a mid-pagination failure together with the
// rows already retrieved so they can be reported instead of discarded.
type partialResultError struct {
	rows []map[string]any
	err  error
}

func (e *partialResultError) Error() string {
	return fmt.Sprintf("result collection aborted after %d rows: %v", len(e.rows), e.err)
}

func (e *partialResultError) Unwrap() error {
	return e.err
}

// collectResults pages through a Done job's result rows.
//
// Paging stops when the platform returns a short page (no further
// rows) or when maxCount rows have accumulated; in the latter case
// the result is marked truncated if rows remain remotely. A transport
// failure mid-pagination aborts collection and returns a
// partialResultError carrying the rows fetched so far.
func (c *Client) collectResults(ctx context.Context, j *job, maxCount int) (rows []map[string]any, truncated bool, err error) {
	rows = make([]map[string]any, 0, min(maxCount, c.pageSize))
	offset := 0

	for {
		count := c.pageSize
		if remaining := maxCount - len(rows); remaining < count {
			count = remaining
		}
		if count <= 0 {
			return rows, j.remaining(offset), nil
		}

		params := url.Values{
			"offset": {strconv.Itoa(offset)},
			"count":  {strconv.Itoa(count)},
		}
		body, fetchErr := c.get(ctx, "/services/search/jobs/"+url.PathEscape(j.sid)+"/results", params)
		if fetchErr != nil {
			return rows, false, &partialResultError{rows: rows, err: fetchErr}
		}

		var page resultsPage
		if decodeErr := json.Unmarshal(body, &page); decodeErr != nil {
			return rows, false, &partialResultError{rows: rows, err: decodeErr}
		}

		rows = append(rows, page.Results...)
		offset += len(page.Results)

		if len(page.Results) < count {
			// Short page: the platform has no further rows.
			return rows, false, nil
		}
	}
}

// remaining reports whether rows beyond fetched exist remotely. The
// job's resultCount from the final status poll is authoritative; when
// a version omits it, a full final page is assumed to mean more rows.
func (j *job) remaining(fetched int) bool {
	if j.content.ResultCount > 0 {
		return fetched < j.content.ResultCount
	}
	return true
}
