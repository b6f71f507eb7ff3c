package api

// Request/response DTOs. Amounts travel as decimal strings so callers never
// deal with hex-encoded uint256 values.

type TokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
}

type TransferRequest struct {
	Caller    string `json:"caller"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type ApproveRequest struct {
	Caller  string `json:"caller"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type AmountRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type OpenPositionRequest struct {
	Caller   string `json:"caller"`
	Amount   string `json:"amount"`
	Leverage uint32 `json:"leverage"`
}

type ClosePositionRequest struct {
	Caller     string `json:"caller"`
	PositionID uint64 `json:"positionId"`
}

type LimitOrderRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
	Price  string `json:"price"`
	Kind   uint8  `json:"kind"` // 0=buy, 1=sell
}

type StopLossRequest struct {
	Caller       string `json:"caller"`
	Amount       string `json:"amount"`
	TriggerPrice string `json:"triggerPrice"`
}

type CancelOrderRequest struct {
	Caller  string `json:"caller"`
	OrderID uint64 `json:"orderId"`
}

type ExecuteOrderRequest struct {
	Caller  string `json:"caller"`
	Owner   string `json:"owner"`
	OrderID uint64 `json:"orderId"`
}

type SetPausedRequest struct {
	Caller string `json:"caller"`
	Paused bool   `json:"paused"`
}

type SetRatioRequest struct {
	Caller string `json:"caller"`
	Ratio  string `json:"ratio"`
}

type SetMaxLeverageRequest struct {
	Caller      string `json:"caller"`
	MaxLeverage uint32 `json:"maxLeverage"`
}

type AmountResponse struct {
	Amount string `json:"amount"`
}

type IDResponse struct {
	ID uint64 `json:"id"`
}

type PositionInfo struct {
	ID       uint64 `json:"id"`
	Owner    string `json:"owner"`
	Size     string `json:"size"`
	Leverage uint32 `json:"leverage"`
	OpenedAt int64  `json:"openedAt"`
	Closed   bool   `json:"closed"`
}

type OrderInfo struct {
	ID        uint64 `json:"id"`
	Owner     string `json:"owner"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	Price     string `json:"price"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Code   int    `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Event is the websocket broadcast envelope for committed calls.
type Event struct {
	Type   string         `json:"type"`
	Caller string         `json:"caller"`
	Data   map[string]any `json:"data,omitempty"`
	TS     int64          `json:"ts"`
}
