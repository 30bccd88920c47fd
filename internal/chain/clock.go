package chain

import (
	"context"
	"fmt"
	"time"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"

	"github.com/elys-network/lockdrop/internal/types"
)

// CometClock reads the latest block from a CometBFT node.
type CometClock struct {
	client *rpchttp.HTTP
}

func NewCometClock(remote string) (*CometClock, error) {
	client, err := rpchttp.New(remote, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRPCConnectionFailed, err)
	}
	return &CometClock{client: client}, nil
}

// Block returns the height and time of the latest committed block.
func (c *CometClock) Block(ctx context.Context) (types.Block, error) {
	status, err := c.client.Status(ctx)
	if err != nil {
		return types.Block{}, fmt.Errorf("%w: status: %v", ErrRPCConnectionFailed, err)
	}
	if status == nil || status.SyncInfo.LatestBlockHeight <= 0 {
		return types.Block{}, fmt.Errorf("%w: node reports no blocks", ErrInvalidResponse)
	}
	if status.SyncInfo.CatchingUp {
		chainLogger.Warn().Int64("height", status.SyncInfo.LatestBlockHeight).Msg("Node is still catching up")
	}
	return types.Block{
		Height: uint64(status.SyncInfo.LatestBlockHeight),
		Time:   status.SyncInfo.LatestBlockTime.UTC(),
	}, nil
}

// FixedClock always reports the same block. It serves tests and offline replays.
type FixedClock struct {
	Current types.Block
}

func (c *FixedClock) Block(context.Context) (types.Block, error) {
	return c.Current, nil
}

// Advance moves the clock forward by n blocks of the given interval.
func (c *FixedClock) Advance(n uint64, interval time.Duration) {
	c.Current.Height += n
	c.Current.Time = c.Current.Time.Add(time.Duration(n) * interval)
}
