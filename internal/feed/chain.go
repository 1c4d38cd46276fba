package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"lending-pool-indexer/internal/ethlog"
)

// chainClient is the slice of ethclient.Client the log source needs.
type chainClient interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// ChainLogSource subscribes to raw lending pool logs on an EVM node and
// decodes them into domain events. Logs with unknown signature topics
// and logs removed by a reorg are skipped. Block timestamps come from
// the block header; headers are fetched once per block since logs of
// one block arrive together.
type ChainLogSource struct {
	endpoint string
	pool     common.Address
	decoder  *ethlog.Decoder
	logger   *log.Logger

	client chainClient // nil until Subscribe dials; set directly in tests
}

// NewChainLogSource creates a source reading raw logs for the given
// pool contract from an EVM node WebSocket endpoint.
func NewChainLogSource(endpoint, poolAddr string, logger *log.Logger) (*ChainLogSource, error) {
	decoder, err := ethlog.NewDecoder()
	if err != nil {
		return nil, err
	}
	return &ChainLogSource{
		endpoint: endpoint,
		pool:     common.HexToAddress(poolAddr),
		decoder:  decoder,
		logger:   logger,
	}, nil
}

// Subscribe opens the log subscription and streams decoded events. The
// channel is closed when the subscription fails or the context is
// cancelled.
func (s *ChainLogSource) Subscribe(ctx context.Context) (<-chan Item, error) {
	client := s.client
	if client == nil {
		c, err := ethclient.DialContext(ctx, s.endpoint)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", s.endpoint, err)
		}
		client = c
	}

	logs := make(chan types.Log, 128)
	sub, err := client.SubscribeFilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{s.pool},
	}, logs)
	if err != nil {
		return nil, fmt.Errorf("subscribe logs: %w", err)
	}

	ch := make(chan Item)

	go func() {
		defer close(ch)
		defer sub.Unsubscribe()

		var (
			lastBlock uint64
			lastTime  int64
		)

		for {
			select {
			case <-ctx.Done():
				return

			case err := <-sub.Err():
				if err != nil && ctx.Err() == nil {
					select {
					case ch <- Item{Err: fmt.Errorf("log subscription: %w", err)}:
					case <-ctx.Done():
					}
				}
				return

			case lg := <-logs:
				if lg.Removed {
					if s.logger != nil {
						s.logger.Printf("Skipping reorged log at block %d index %d", lg.BlockNumber, lg.Index)
					}
					continue
				}

				if lg.BlockNumber != lastBlock || lastTime == 0 {
					header, err := client.HeaderByNumber(ctx, new(big.Int).SetUint64(lg.BlockNumber))
					if err != nil {
						if ctx.Err() == nil {
							select {
							case ch <- Item{Err: fmt.Errorf("header for block %d: %w", lg.BlockNumber, err)}:
							case <-ctx.Done():
							}
						}
						return
					}
					lastBlock = lg.BlockNumber
					lastTime = int64(header.Time)
				}

				event, err := s.decoder.Decode(lg, lastTime)
				if errors.Is(err, ethlog.ErrUnknownEvent) {
					continue
				}
				if err != nil {
					select {
					case ch <- Item{Err: fmt.Errorf("decode log at block %d index %d: %w", lg.BlockNumber, lg.Index, err)}:
					case <-ctx.Done():
					}
					return
				}

				select {
				case ch <- Item{Event: event}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
