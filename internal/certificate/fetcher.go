package certificate

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves certificate descriptors from the data endpoint.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFetcher creates a fetcher for the portal at baseURL.
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 12 * time.Second},
	}
}

// Fetch requests the descriptor for a participant and parses it.
// Non-2xx answers become a *TransportError, a 2xx body with an error
// string becomes a *DomainError.
func (f *Fetcher) Fetch(ctx context.Context, participantID string) (Descriptor, error) {
	endpoint := f.BaseURL + "/api/certificate-data/" + url.PathEscape(participantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: endpoint, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	return ParseDescriptor(body)
}
