package api

import (
	"context"
	"fmt"
	"net/url"
	"rivals-scout/internal/config"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"

	"github.com/valyala/fasthttp"
)

// RivalsClient talks to the rivalsmeta player search and stats endpoints.
type RivalsClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewRivalsClient(cfg *config.Config) *RivalsClient {
	return &RivalsClient{
		baseURL: cfg.RivalsAPIURL,
		client:  newHTTPClient(constants.ExternalAPITimeout),
	}
}

type findPlayerRequest struct {
	Name string `json:"name"`
}

func (c *RivalsClient) FindPlayer(ctx context.Context, name string) ([]domain.SearchCandidate, error) {
	resp, err := doRequest[[]domain.SearchCandidate](ctx, c.client, request{
		method: fasthttp.MethodPost,
		url:    c.baseURL + "/api/find-player",
		body:   findPlayerRequest{Name: name},
	})
	if err != nil {
		return nil, err
	}
	return *resp, nil
}

// GetPlayer returns the undecoded stats document for id.
func (c *RivalsClient) GetPlayer(ctx context.Context, id domain.PlayerID, season int) ([]byte, error) {
	u := fmt.Sprintf("%s/api/player/%s?season=%d", c.baseURL, url.PathEscape(string(id)), season)
	return doRaw(ctx, c.client, request{method: fasthttp.MethodGet, url: u})
}
