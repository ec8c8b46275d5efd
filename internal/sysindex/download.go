package sysindex

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Download fetches a Contents file and returns its packages-by-path map.
// A nil client means http.DefaultClient.
func Download(ctx context.Context, client *http.Client, url string, hasHeader bool, timeout time.Duration) (Index, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	byPath, _, err := ParseContents(resp.Body, hasHeader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return byPath, nil
}
