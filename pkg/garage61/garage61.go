// Package garage61 fetches the team's driver roster from the Garage 61 API.
package garage61

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/catalog"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// DefaultEndpoint is the production Garage 61 API.
const DefaultEndpoint = "https://garage61.net/api"

// A Provider supplies the current driver roster. Implementations that fail
// must return an error rather than an empty roster: the caller treats a
// fetch failure as "no roster update" and keeps the previously known list,
// while an empty roster would prune every overlay.
type Provider interface {
	Drivers(teamID string) ([]string, error)
}

// Client is the HTTP Provider against the Garage 61 API.
type Client struct {
	// Endpoint overrides DefaultEndpoint. Tests point it at a local server.
	Endpoint string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	httpClient http.Client
}

// New creates a Client for the production endpoint.
func New(apiKey string) *Client {
	return &Client{
		Endpoint:   DefaultEndpoint,
		APIKey:     apiKey,
		httpClient: http.Client{Timeout: 10 * time.Second},
	}
}

// Drivers returns the cleaned driver names for the given team.
func (c *Client) Drivers(teamID string) ([]string, error) {
	url := fmt.Sprintf("%s/teams/%s/drivers", c.Endpoint, teamID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithContext(err, "build request")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithContext(err, "fetch roster")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(fmt.Sprintf("roster request failed with status %d", resp.StatusCode))
	}

	var parsed struct {
		Drivers []struct {
			Name string `json:"name"`
		} `json:"drivers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.WithContext(err, "decode roster")
	}

	var names []string
	for _, driver := range parsed.Drivers {
		if name := catalog.CleanName(driver.Name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
