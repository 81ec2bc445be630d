package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/plexsphere/hwcountd/internal/catalog"
	"github.com/plexsphere/hwcountd/internal/nodeapi"
)

// newSocketClient creates an HTTP client that connects via Unix socket.
func newSocketClient(socketPath string) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", socketPath)
			},
		},
	}
}

// socketURL returns a URL for the given path using the Unix socket.
func socketURL(path string) string {
	return "http://localhost" + path
}

// socketGet performs a GET request to the local agent via Unix socket.
func socketGet(socketPath, path string) (*http.Response, error) {
	client := newSocketClient(socketPath)
	resp, err := client.Get(socketURL(path))
	if err != nil {
		return nil, fmt.Errorf("agent not running or socket unavailable at %s: %w", socketPath, err)
	}
	return resp, nil
}

// socketPost performs a JSON POST request to the local agent via Unix socket.
func socketPost(socketPath, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	client := newSocketClient(socketPath)
	resp, err := client.Post(socketURL(path), "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("agent not running or socket unavailable at %s: %w", socketPath, err)
	}
	return resp, nil
}

// decodeResponse closes resp and decodes its JSON body into v. Error
// statuses are returned as errors carrying the agent's message; a nil v
// discards the body.
func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr nodeapi.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if v == nil || len(body) == 0 {
		return nil
	}
	// Counter values are u64; keep them exact.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// metricName expands a bare counter code to its full metric name.
func metricName(arg string) string {
	if strings.Contains(arg, ".") {
		return arg
	}
	return catalog.Namespace + ".system." + arg
}

// fetchNames fetches metrics by name.
func fetchNames(names []string) ([]nodeapi.FetchResult, error) {
	resp, err := socketPost(socketPath, "/v1/fetch", nodeapi.FetchRequest{Names: names})
	if err != nil {
		return nil, err
	}
	var out nodeapi.FetchResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// storeControl writes one value to a control metric.
func storeControl(name, value string) error {
	req := nodeapi.StoreRequest{Values: []nodeapi.StoreItem{{Name: name, Value: value}}}
	resp, err := socketPost(socketPath, "/v1/store", req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}
