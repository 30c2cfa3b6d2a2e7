package prover

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kysee/zk-bls-stages/types"
)

// APIFetcher implements Fetcher by fetching the input JSON over HTTP
type APIFetcher struct {
	URL    string
	Client *http.Client
}

// NewAPIFetcher creates a new APIFetcher for the given URL
func NewAPIFetcher(url string) *APIFetcher {
	return &APIFetcher{
		URL:    url,
		Client: &http.Client{},
	}
}

// Input retrieves and parses the verification input from the endpoint
func (a *APIFetcher) Input() (*types.VerifyInput, error) {
	resp, err := a.Client.Get(a.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var in types.VerifyInput
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	return &in, nil
}
