package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
)

const (
	// PolicyPath is appended to the policy base URL.
	PolicyPath = "otatacliq/getApplicationProperties.json"

	// DefaultStoreLookupURL is the public catalog used to find the latest published version.
	DefaultStoreLookupURL = "http://itunes.apple.com/lookup"

	maxBodyBytes = 1 << 20
)

// Fetcher is the only network facing capability of the decision engine.
// Implementations must not retry internally; wrap them with WithRetry instead.
type Fetcher interface {
	// FetchPolicy retrieves and decodes the update policy document.
	FetchPolicy(ctx context.Context) (*policy.Document, error)

	// FetchLatestVersion looks up the latest published version for bundleID.
	FetchLatestVersion(ctx context.Context, bundleID string) (string, error)
}

// Compile-time check that *HTTPFetcher implements Fetcher.
var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher implements Fetcher on top of the policy endpoint and the store lookup API.
type HTTPFetcher struct {
	// BaseURL of the application properties service, e.g. https://config.example.com
	BaseURL string
	// PropertyName is sent as the propertyNames query parameter.
	PropertyName string
	// StoreLookupURL defaults to DefaultStoreLookupURL.
	StoreLookupURL string

	Client *http.Client
}

// storeLookupResponse mirrors the part of the lookup payload we need.
// Version is decoded weakly because the catalog is not strict about its type.
type storeLookupResponse struct {
	Results []struct {
		Version string `json:"version"`
	} `json:"results"`
}

// FetchPolicy calls GET {BaseURL}/otatacliq/getApplicationProperties.json?propertyNames={PropertyName}.
func (f *HTTPFetcher) FetchPolicy(ctx context.Context) (*policy.Document, error) {
	endpoint, err := url.Parse(f.BaseURL)
	if err != nil || endpoint.Host == "" {
		return nil, transportError("policy", 0, fmt.Errorf("invalid policy base url %q", f.BaseURL))
	}
	endpoint = endpoint.JoinPath(PolicyPath)

	query := endpoint.Query()
	query.Set("propertyNames", f.PropertyName)
	endpoint.RawQuery = query.Encode()

	body, err := f.get(ctx, "policy", endpoint.String())
	if err != nil {
		return nil, err
	}

	doc, err := policy.DecodeDocument(body)
	if err != nil {
		return nil, decodeError("policy", err)
	}
	return doc, nil
}

// FetchLatestVersion calls GET {StoreLookupURL}?bundleId={bundleID} and returns results[0].version.
func (f *HTTPFetcher) FetchLatestVersion(ctx context.Context, bundleID string) (string, error) {
	lookupURL := f.StoreLookupURL
	if lookupURL == "" {
		lookupURL = DefaultStoreLookupURL
	}

	endpoint, err := url.Parse(lookupURL)
	if err != nil || endpoint.Host == "" {
		return "", transportError("store", 0, fmt.Errorf("invalid store lookup url %q", lookupURL))
	}
	query := endpoint.Query()
	query.Set("bundleId", bundleID)
	endpoint.RawQuery = query.Encode()

	body, err := f.get(ctx, "store", endpoint.String())
	if err != nil {
		return "", err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", decodeError("store", err)
	}

	lookup, err := policy.DecodeWeakly[storeLookupResponse](raw)
	if err != nil {
		return "", decodeError("store", err)
	}

	if len(lookup.Results) == 0 {
		return "", decodeError("store", fmt.Errorf("no results for bundle id %q", bundleID))
	}
	if lookup.Results[0].Version == "" {
		return "", decodeError("store", errors.New("result has no version"))
	}

	return lookup.Results[0].Version, nil
}

// get performs the request and returns the body of a 2xx response.
func (f *HTTPFetcher) get(ctx context.Context, op string, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, transportError(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, transportError(op, resp.StatusCode, fmt.Errorf("unexpected response from %s", req.URL.Host))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, transportError(op, resp.StatusCode, err)
	}
	if len(body) > maxBodyBytes {
		return nil, decodeError(op, fmt.Errorf("response larger than %d bytes", maxBodyBytes))
	}

	return body, nil
}
