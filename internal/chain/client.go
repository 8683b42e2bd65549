package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"notifyScope/internal/model"
)

// ErrAccountNotFound is returned when a point lookup hits no account.
var ErrAccountNotFound = errors.New("chain: account not found")

// Client wraps a Solana RPC and websocket connection pair and provides
// anchor event subscriptions plus typed account lookups.
type Client struct {
	rpc    *rpc.Client
	ws     *ws.Client
	logger *zap.Logger
}

// Connect dials the websocket endpoint and builds a Client.
func Connect(ctx context.Context, rpcURL, wsURL string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	wsClient, err := ws.Connect(ctx, wsURL)
	if err != nil {
		return nil, fmt.Errorf("connect ws: %w", err)
	}
	return &Client{
		rpc:    rpc.New(rpcURL),
		ws:     wsClient,
		logger: logger,
	}, nil
}

// Close closes the underlying connections.
func (c *Client) Close() {
	if c.ws != nil {
		c.ws.Close()
	}
	if c.rpc != nil {
		_ = c.rpc.Close()
	}
}

// Subscription is one active event subscription. Unsubscribe stops delivery
// and blocks until the receive loop has released the websocket subscription.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}

// SubscribeEvent subscribes to one anchor event type of a program and invokes
// handler for every decoded occurrence, in delivery order.
func (c *Client) SubscribeEvent(ctx context.Context, programAddress string, spec model.EventSpec, handler func(model.RawEvent)) (*Subscription, error) {
	program, err := solana.PublicKeyFromBase58(programAddress)
	if err != nil {
		return nil, fmt.Errorf("parse program address: %w", err)
	}

	logSub, err := c.ws.LogsSubscribeMentions(program, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("subscribe logs: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go c.pump(subCtx, logSub, program, spec, handler, sub.done)

	return sub, nil
}

func (c *Client) pump(
	ctx context.Context,
	logSub *ws.LogSubscription,
	program solana.PublicKey,
	spec model.EventSpec,
	handler func(model.RawEvent),
	done chan struct{},
) {
	defer close(done)
	defer func() { logSub.Unsubscribe() }()

	specs := []model.EventSpec{spec}
	for {
		res, err := logSub.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("log subscription interrupted",
				zap.String("program", program.String()),
				zap.String("event", spec.Name),
				zap.Error(err),
			)
			logSub.Unsubscribe()
			next, rerr := c.resubscribe(ctx, program)
			if rerr != nil {
				c.logger.Error("resubscribe failed",
					zap.String("program", program.String()),
					zap.String("event", spec.Name),
					zap.Error(rerr),
				)
				return
			}
			logSub = next
			continue
		}
		if res == nil || res.Value.Err != nil {
			continue
		}

		for _, ev := range DecodeEventLogs(res.Value.Logs, specs) {
			handler(model.RawEvent{
				Program:   program.String(),
				Name:      ev.Name,
				Fields:    ev.Fields,
				Signature: res.Value.Signature.String(),
				Index:     ev.Index,
			})
		}
	}
}

func (c *Client) resubscribe(ctx context.Context, program solana.PublicKey) (*ws.LogSubscription, error) {
	var sub *ws.LogSubscription
	err := withRetry(ctx, 5, 500*time.Millisecond, func(context.Context) error {
		var err error
		sub, err = c.ws.LogsSubscribeMentions(program, rpc.CommitmentConfirmed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// FetchExtra resolves an address to its decoded account state for the given
// lookup kind. Kinds outside the supported set return (nil, nil).
func (c *Client) FetchExtra(ctx context.Context, kind model.LookupKind, address string) (ExtraInfo, error) {
	if kind == model.LookupNone {
		return nil, nil
	}

	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("parse account address: %w", err)
	}

	switch kind {
	case model.LookupDao:
		var dao DaoAccount
		if err := c.fetchAccount(ctx, account, &dao); err != nil {
			return nil, err
		}
		return dao, nil
	case model.LookupProposal:
		var proposal ProposalAccount
		if err := c.fetchAccount(ctx, account, &proposal); err != nil {
			return nil, err
		}
		return proposal, nil
	default:
		return nil, nil
	}
}

func (c *Client) fetchAccount(ctx context.Context, address solana.PublicKey, out any) error {
	res, err := c.rpc.GetAccountInfo(ctx, address)
	if errors.Is(err, rpc.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("get account info: %w", err)
	}
	if res == nil || res.Value == nil {
		return ErrAccountNotFound
	}

	data := res.Value.Data.GetBinary()
	if len(data) < 8 {
		return fmt.Errorf("account data too short: %d bytes", len(data))
	}
	// skip the 8-byte anchor account discriminator
	if err := bin.NewBorshDecoder(data[8:]).Decode(out); err != nil {
		return fmt.Errorf("decode account: %w", err)
	}
	return nil
}
