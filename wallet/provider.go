package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"doc-anchor/tool"
)

// rpc error code returned when the wallet owner declines a request
const codeUserRejected = 4001

var (
	ErrUserRejected      = errors.New("request rejected by the wallet owner")
	ErrInsufficientFunds = errors.New("insufficient funds for transaction")
)

// RPCError carries a JSON-RPC error object from the wallet provider.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet rpc error %d: %s", e.Code, e.Message)
}

// Provider is an external wallet the user controls. The process never
// holds a private key; every signing decision happens on the provider
// side and may be declined.
type Provider interface {
	Request(ctx context.Context, method string, params interface{}) (gjson.Result, error)
}

// RPCProvider talks JSON-RPC 2.0 to a wallet endpoint over HTTP.
type RPCProvider struct {
	url    string
	nextID uint64
}

// NewRPCProvider create provider for the given wallet endpoint
func NewRPCProvider(url string) *RPCProvider {
	return &RPCProvider{url: url}
}

// Request send a single JSON-RPC call and return the result field.
// Declines (code 4001) and balance failures map to sentinel errors so
// callers can show the right status message.
func (p *RPCProvider) Request(ctx context.Context, method string, params interface{}) (gjson.Result, error) {
	if err := ctx.Err(); err != nil {
		return gjson.Result{}, err
	}
	if params == nil {
		params = []interface{}{}
	}

	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      atomic.AddUint64(&p.nextID, 1),
		"method":  method,
		"params":  params,
	}

	raw, err := tool.PostUrl(p.url, body, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("wallet request %s: %w", method, err)
	}

	if rpcErr := gjson.Get(raw, "error"); rpcErr.Exists() {
		return gjson.Result{}, mapRPCError(int(rpcErr.Get("code").Int()), rpcErr.Get("message").String())
	}

	return gjson.Get(raw, "result"), nil
}

func mapRPCError(code int, message string) error {
	if code == codeUserRejected {
		return fmt.Errorf("%w: %s", ErrUserRejected, message)
	}
	if strings.Contains(strings.ToLower(message), "insufficient funds") {
		return fmt.Errorf("%w: %s", ErrInsufficientFunds, message)
	}
	return &RPCError{Code: code, Message: message}
}
