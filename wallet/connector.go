package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

var (
	ErrProviderMissing    = errors.New("no wallet provider is available")
	ErrConnectionRejected = errors.New("failed to connect to the wallet, please try again")
	ErrNoAccounts         = errors.New("wallet returned no accounts")
)

const defaultPollInterval = 2 * time.Second

// Connector manages the session with an external wallet provider.
type Connector struct {
	provider     Provider
	pollInterval time.Duration
}

// NewConnector create connector for the given provider
func NewConnector(provider Provider) *Connector {
	return &Connector{
		provider:     provider,
		pollInterval: defaultPollInterval,
	}
}

// SetPollInterval override the receipt and account poll interval
func (c *Connector) SetPollInterval(d time.Duration) {
	if d > 0 {
		c.pollInterval = d
	}
}

// Connect asks the wallet owner to expose an account. A decline maps to
// ErrConnectionRejected.
func (c *Connector) Connect(ctx context.Context) (*Signer, error) {
	if c.provider == nil {
		return nil, ErrProviderMissing
	}

	result, err := c.provider.Request(ctx, "eth_requestAccounts", nil)
	if err != nil {
		if errors.Is(err, ErrUserRejected) {
			return nil, fmt.Errorf("%w: %v", ErrConnectionRejected, err)
		}
		return nil, err
	}

	accounts := result.Array()
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}

	return &Signer{
		provider:     c.provider,
		address:      accounts[0].String(),
		pollInterval: c.pollInterval,
	}, nil
}

// IsConnected reports whether the wallet already exposes an account.
// It never fails; any provider error reads as not connected.
func (c *Connector) IsConnected(ctx context.Context) bool {
	if c.provider == nil {
		return false
	}
	result, err := c.provider.Request(ctx, "eth_accounts", nil)
	if err != nil {
		return false
	}
	return len(result.Array()) > 0
}

// OnAccountsChanged invokes cb whenever the exposed account set changes.
// An empty set means the wallet disconnected. The returned cancel stops
// the watcher and is safe to call more than once.
func (c *Connector) OnAccountsChanged(cb func(accounts []string)) (cancel func()) {
	if c.provider == nil {
		log.Printf("No wallet provider, account watcher not started")
		return func() {}
	}

	ctx, stop := context.WithCancel(context.Background())
	var once sync.Once

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		last := c.currentAccounts(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current := c.currentAccounts(ctx)
				if !sameAccounts(last, current) {
					last = current
					cb(current)
				}
			}
		}
	}()

	return func() {
		once.Do(stop)
	}
}

func (c *Connector) currentAccounts(ctx context.Context) []string {
	result, err := c.provider.Request(ctx, "eth_accounts", nil)
	if err != nil {
		return nil
	}
	var accounts []string
	for _, a := range result.Array() {
		accounts = append(accounts, a.String())
	}
	return accounts
}

func sameAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Signer is a connected wallet account able to send transactions.
type Signer struct {
	provider     Provider
	address      string
	pollInterval time.Duration
}

// Address the exposed account address
func (s *Signer) Address() string {
	return s.address
}

// SendTransaction submits a transaction carrying payload as calldata
// and returns a handle to await its receipt. The payload is sent as
// plain UTF-8 bytes, hex encoded.
func (s *Signer) SendTransaction(ctx context.Context, to string, payload []byte) (*PendingTx, error) {
	tx := map[string]interface{}{
		"from": s.address,
		"to":   to,
		"data": "0x" + hex.EncodeToString(payload),
	}

	result, err := s.provider.Request(ctx, "eth_sendTransaction", []interface{}{tx})
	if err != nil {
		return nil, err
	}

	hash := result.String()
	if hash == "" {
		return nil, errors.New("wallet returned no transaction hash")
	}

	return &PendingTx{
		provider:     s.provider,
		Hash:         hash,
		pollInterval: s.pollInterval,
	}, nil
}

// PendingTx a submitted transaction awaiting confirmation
type PendingTx struct {
	provider     Provider
	Hash         string
	pollInterval time.Duration
}

// Receipt confirmation outcome of a transaction
type Receipt struct {
	TxHash      string
	Status      uint64
	BlockNumber int64
}

// Wait polls for the transaction receipt until the transaction is mined
// or ctx expires.
func (t *PendingTx) Wait(ctx context.Context) (*Receipt, error) {
	interval := t.pollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := t.provider.Request(ctx, "eth_getTransactionReceipt", []interface{}{t.Hash})
		if err != nil {
			return nil, err
		}
		if result.Exists() && result.Type != gjson.Null {
			return &Receipt{
				TxHash:      result.Get("transactionHash").String(),
				Status:      hexToUint(result.Get("status").String()),
				BlockNumber: int64(hexToUint(result.Get("blockNumber").String())),
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for transaction %s: %w", t.Hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

func hexToUint(s string) uint64 {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	return v
}
