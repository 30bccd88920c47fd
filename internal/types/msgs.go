package types

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Msg is an outbound instruction computed by the core and dispatched by the host.
type Msg interface {
	MsgType() string
}

// BankSend transfers native coins out of the contract account.
type BankSend struct {
	ToAddress string     `json:"to_address"`
	Amount    []sdk.Coin `json:"amount"`
}

func (BankSend) MsgType() string { return "bank_send" }

// WasmExecute calls another contract.
type WasmExecute struct {
	ContractAddr string          `json:"contract_addr"`
	Msg          json.RawMessage `json:"msg"`
	Funds        []sdk.Coin      `json:"funds"`
}

func (WasmExecute) MsgType() string { return "wasm_execute" }

// WasmInstantiate creates a new contract instance. The host reports the new
// address back through reward contract registration.
type WasmInstantiate struct {
	Admin  string          `json:"admin,omitempty"`
	CodeID uint64          `json:"code_id"`
	Label  string          `json:"label"`
	Msg    json.RawMessage `json:"msg"`
	Funds  []sdk.Coin      `json:"funds"`
}

func (WasmInstantiate) MsgType() string { return "wasm_instantiate" }

// PoolParams are the balancer pool fee parameters.
type PoolParams struct {
	SwapFee sdkmath.LegacyDec `json:"swap_fee"`
	ExitFee sdkmath.LegacyDec `json:"exit_fee"`
}

// PoolAsset is one weighted side of a balancer pool.
type PoolAsset struct {
	Token  sdk.Coin    `json:"token"`
	Weight sdkmath.Int `json:"weight"`
}

// CreateBalancerPool creates a weighted pool from the listed assets.
type CreateBalancerPool struct {
	Sender             string      `json:"sender"`
	PoolParams         PoolParams  `json:"pool_params"`
	PoolAssets         []PoolAsset `json:"pool_assets"`
	FuturePoolGovernor string      `json:"future_pool_governor"`
}

func (CreateBalancerPool) MsgType() string { return "create_balancer_pool" }

// ExitPool burns pool shares for the underlying reserves.
type ExitPool struct {
	Sender        string      `json:"sender"`
	PoolID        uint64      `json:"pool_id"`
	ShareInAmount sdkmath.Int `json:"share_in_amount"`
	TokenOutMins  []sdk.Coin  `json:"token_out_mins"`
}

func (ExitPool) MsgType() string { return "exit_pool" }

// Attribute is a key/value event attribute attached to a response.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the result of one committed operation.
type Response struct {
	Action     string      `json:"action"`
	Messages   []Msg       `json:"-"`
	Attributes []Attribute `json:"attributes"`
	Data       any         `json:"data,omitempty"`
}

func NewResponse(action string) *Response {
	return &Response{
		Action:     action,
		Attributes: []Attribute{{Key: "action", Value: action}},
	}
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r *Response) AddMessages(msgs ...Msg) *Response {
	r.Messages = append(r.Messages, msgs...)
	return r
}

func (r *Response) WithData(data any) *Response {
	r.Data = data
	return r
}

// Attribute returns the value of the first attribute named key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

type msgEnvelope struct {
	Type  string `json:"type"`
	Value Msg    `json:"value"`
}

// MarshalJSON tags every message with its type so consumers can decode the union.
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	envelopes := make([]msgEnvelope, 0, len(r.Messages))
	for _, m := range r.Messages {
		envelopes = append(envelopes, msgEnvelope{Type: m.MsgType(), Value: m})
	}
	return json.Marshal(struct {
		plain
		Messages []msgEnvelope `json:"messages"`
	}{plain: plain(r), Messages: envelopes})
}
