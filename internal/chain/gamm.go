package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	gammRoute   = "/osmosis/gamm/v1beta1/pools/%d"
	lcdTimeout  = 15 * time.Second
	maxBodySize = 1 << 20
)

type totalLiquidityResponse struct {
	Liquidity []sdk.Coin `json:"liquidity"`
}

type totalSharesResponse struct {
	TotalShares *sdk.Coin `json:"total_shares"`
}

// GammClient reads balancer pool state from the LCD REST API.
type GammClient struct {
	baseURL string
	client  *http.Client
}

func NewGammClient(baseURL string) (*GammClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("LCD endpoint cannot be empty")
	}
	return &GammClient{baseURL: baseURL, client: &http.Client{Timeout: lcdTimeout}}, nil
}

func (g *GammClient) TotalPoolLiquidity(ctx context.Context, poolID uint64) ([]sdk.Coin, error) {
	var resp totalLiquidityResponse
	if err := g.get(ctx, fmt.Sprintf(gammRoute, poolID)+"/total_pool_liquidity", &resp); err != nil {
		return nil, err
	}
	if len(resp.Liquidity) == 0 {
		return nil, fmt.Errorf("%w: pool %d has no liquidity", ErrInvalidResponse, poolID)
	}
	for _, c := range resp.Liquidity {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w: pool %d reserve: %v", ErrInvalidResponse, poolID, err)
		}
	}
	return resp.Liquidity, nil
}

func (g *GammClient) TotalShares(ctx context.Context, poolID uint64) (sdk.Coin, error) {
	var resp totalSharesResponse
	if err := g.get(ctx, fmt.Sprintf(gammRoute, poolID)+"/total_shares", &resp); err != nil {
		return sdk.Coin{}, err
	}
	if resp.TotalShares == nil {
		return sdk.Coin{}, fmt.Errorf("%w: pool %d reports no shares", ErrInvalidResponse, poolID)
	}
	if err := resp.TotalShares.Validate(); err != nil {
		return sdk.Coin{}, fmt.Errorf("%w: pool %d shares: %v", ErrInvalidResponse, poolID, err)
	}
	return *resp.TotalShares, nil
}

func (g *GammClient) get(ctx context.Context, route string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+route, nil)
	if err != nil {
		return fmt.Errorf("failed to build LCD request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		chainLogger.Error().Err(err).Str("route", route).Msg("LCD request failed")
		return fmt.Errorf("LCD request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrInvalidResponse, route, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read LCD response: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body from %s", ErrInvalidResponse, route)
	}
	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, route, err)
	}
	return nil
}
