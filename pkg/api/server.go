package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/casperflow/casperflow/pkg/host"
	"github.com/casperflow/casperflow/pkg/ledger"
)

// Server exposes one REST route per ledger entry point plus a websocket
// event feed. The caller principal arrives in the request body; resolving
// real identities (signatures, sessions) belongs to the deployment in front
// of this server.
type Server struct {
	host   *host.Host
	router *mux.Router
	hub    *Hub
	log    *zap.Logger
}

func NewServer(h *host.Host, log *zap.Logger) *Server {
	s := &Server{
		host:   h,
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Token reads
	api.HandleFunc("/token", s.handleGetToken).Methods("GET")
	api.HandleFunc("/accounts/{address}/balance", s.handleGetBalance).Methods("GET")
	api.HandleFunc("/accounts/{owner}/allowances/{spender}", s.handleGetAllowance).Methods("GET")

	// Token writes
	api.HandleFunc("/transfer", s.handleTransfer).Methods("POST")
	api.HandleFunc("/approve", s.handleApprove).Methods("POST")

	// Staking
	api.HandleFunc("/stake", s.handleStake).Methods("POST")
	api.HandleFunc("/unstake", s.handleUnstake).Methods("POST")
	api.HandleFunc("/accounts/{address}/stake", s.handleGetStake).Methods("GET")

	// Positions
	api.HandleFunc("/positions/open", s.handleOpenPosition).Methods("POST")
	api.HandleFunc("/positions/close", s.handleClosePosition).Methods("POST")
	api.HandleFunc("/accounts/{address}/positions/{id:[0-9]+}", s.handleGetPosition).Methods("GET")

	// Vault
	api.HandleFunc("/vault/deposit", s.handleVaultDeposit).Methods("POST")
	api.HandleFunc("/vault/withdraw", s.handleVaultWithdraw).Methods("POST")
	api.HandleFunc("/accounts/{address}/vault", s.handleGetVaultShares).Methods("GET")

	// Liquid staking
	api.HandleFunc("/liquid/stake", s.handleStakeForLiquid).Methods("POST")
	api.HandleFunc("/liquid/unstake", s.handleUnstakeLiquid).Methods("POST")
	api.HandleFunc("/liquid/ratio", s.handleGetRatio).Methods("GET")
	api.HandleFunc("/accounts/{address}/derivative", s.handleGetDerivative).Methods("GET")
	api.HandleFunc("/accounts/{address}/liquid", s.handleGetLiquidStake).Methods("GET")

	// Orders
	api.HandleFunc("/orders/limit", s.handleCreateLimitOrder).Methods("POST")
	api.HandleFunc("/orders/stop", s.handleCreateStopLoss).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")
	api.HandleFunc("/orders/execute", s.handleExecuteOrder).Methods("POST")
	api.HandleFunc("/accounts/{address}/orders/{id:[0-9]+}", s.handleGetOrder).Methods("GET")

	// Admin capability points
	api.HandleFunc("/admin/paused", s.handleSetPaused).Methods("POST")
	api.HandleFunc("/admin/ratio", s.handleSetRatio).Methods("POST")
	api.HandleFunc("/admin/max-leverage", s.handleSetMaxLeverage).Methods("POST")

	// WebSocket event feed
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the API server.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.log.Info("api_server_starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// ==============================
// Token handlers
// ==============================

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	var info TokenInfo
	err := s.host.View(func(l *ledger.Ledger) error {
		var err error
		if info.Name, err = l.Name(); err != nil {
			return err
		}
		if info.Symbol, err = l.Symbol(); err != nil {
			return err
		}
		if info.Decimals, err = l.Decimals(); err != nil {
			return err
		}
		supply, err := l.TotalSupply()
		if err != nil {
			return err
		}
		info.TotalSupply = supply.Dec()
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, info)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	s.respondAccountAmount(w, r, func(l *ledger.Ledger, addr common.Address) (*uint256.Int, error) {
		return l.BalanceOf(addr)
	})
}

func (s *Server) handleGetAllowance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	owner, ok := parseAddress(w, vars["owner"])
	if !ok {
		return
	}
	spender, ok := parseAddress(w, vars["spender"])
	if !ok {
		return
	}

	var amount *uint256.Int
	err := s.host.View(func(l *ledger.Ledger) error {
		var err error
		amount, err = l.Allowance(owner, spender)
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, AmountResponse{Amount: amount.Dec()})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}
	recipient, ok := parseAddress(w, req.Recipient)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	err := s.host.Execute("transfer", caller, func(l *ledger.Ledger) error {
		return l.Transfer(caller, recipient, amount)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("transfer", caller, map[string]any{
		"recipient": recipient.Hex(),
		"amount":    amount.Dec(),
	})
	respondOK(w)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}
	spender, ok := parseAddress(w, req.Spender)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	err := s.host.Execute("approve", caller, func(l *ledger.Ledger) error {
		return l.Approve(caller, spender, amount)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("approve", caller, map[string]any{
		"spender": spender.Hex(),
		"amount":  amount.Dec(),
	})
	respondOK(w)
}

// ==============================
// Staking handlers
// ==============================

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	s.handleAmountOp(w, r, "stake", func(l *ledger.Ledger, caller common.Address, amount *uint256.Int) error {
		return l.Stake(caller, amount)
	})
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	s.handleAmountOp(w, r, "unstake", func(l *ledger.Ledger, caller common.Address, amount *uint256.Int) error {
		return l.Unstake(caller, amount)
	})
}

func (s *Server) handleGetStake(w http.ResponseWriter, r *http.Request) {
	s.respondAccountAmount(w, r, func(l *ledger.Ledger, addr common.Address) (*uint256.Int, error) {
		return l.GetStake(addr)
	})
}

// ==============================
// Position handlers
// ==============================

func (s *Server) handleOpenPosition(w http.ResponseWriter, r *http.Request) {
	var req OpenPositionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	var id uint64
	err := s.host.Execute("open_position", caller, func(l *ledger.Ledger) error {
		var err error
		id, err = l.OpenPosition(caller, amount, req.Leverage)
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("position_opened", caller, map[string]any{
		"id":       id,
		"amount":   amount.Dec(),
		"leverage": req.Leverage,
	})
	respondJSON(w, IDResponse{ID: id})
}

func (s *Server) handleClosePosition(w http.ResponseWriter, r *http.Request) {
	var req ClosePositionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}

	err := s.host.Execute("close_position", caller, func(l *ledger.Ledger) error {
		return l.ClosePosition(caller, req.PositionID)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("position_closed", caller, map[string]any{"id": req.PositionID})
	respondOK(w)
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	owner, ok := parseAddress(w, vars["address"])
	if !ok {
		return
	}
	id, ok := parseID(w, vars["id"])
	if !ok {
		return
	}

	var pos *ledger.Position
	err := s.host.View(func(l *ledger.Ledger) error {
		var err error
		pos, err = l.GetPosition(owner, id)
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	if pos == nil {
		respondNotFound(w, "position not found")
		return
	}
	respondJSON(w, PositionInfo{
		ID:       pos.ID,
		Owner:    pos.Owner.Hex(),
		Size:     pos.Size.Dec(),
		Leverage: pos.Leverage,
		OpenedAt: pos.OpenedAt,
		Closed:   pos.Closed,
	})
}

// ==============================
// Vault handlers
// ==============================

func (s *Server) handleVaultDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleAmountOp(w, r, "vault_deposit", func(l *ledger.Ledger, caller common.Address, amount *uint256.Int) error {
		return l.VaultDeposit(caller, amount)
	})
}

func (s *Server) handleVaultWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleAmountOp(w, r, "vault_withdraw", func(l *ledger.Ledger, caller common.Address, amount *uint256.Int) error {
		return l.VaultWithdraw(caller, amount)
	})
}

func (s *Server) handleGetVaultShares(w http.ResponseWriter, r *http.Request) {
	s.respondAccountAmount(w, r, func(l *ledger.Ledger, addr common.Address) (*uint256.Int, error) {
		return l.VaultShares(addr)
	})
}

// ==============================
// Liquid staking handlers
// ==============================

func (s *Server) handleStakeForLiquid(w http.ResponseWriter, r *http.Request) {
	s.handleAmountOp(w, r, "stake_for_liquid", func(l *ledger.Ledger, caller common.Address, amount *uint256.Int) error {
		return l.StakeForLiquid(caller, amount)
	})
}

func (s *Server) handleUnstakeLiquid(w http.ResponseWriter, r *http.Request) {
	s.handleAmountOp(w, r, "unstake_liquid", func(l *ledger.Ledger, caller common.Address, amount *uint256.Int) error {
		return l.UnstakeLiquid(caller, amount)
	})
}

func (s *Server) handleGetRatio(w http.ResponseWriter, r *http.Request) {
	var ratio *uint256.Int
	err := s.host.View(func(l *ledger.Ledger) error {
		var err error
		ratio, err = l.LiquidStakeRatio()
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, AmountResponse{Amount: ratio.Dec()})
}

func (s *Server) handleGetDerivative(w http.ResponseWriter, r *http.Request) {
	s.respondAccountAmount(w, r, func(l *ledger.Ledger, addr common.Address) (*uint256.Int, error) {
		return l.DerivativeBalanceOf(addr)
	})
}

func (s *Server) handleGetLiquidStake(w http.ResponseWriter, r *http.Request) {
	s.respondAccountAmount(w, r, func(l *ledger.Ledger, addr common.Address) (*uint256.Int, error) {
		return l.LiquidStakeOf(addr)
	})
}

// ==============================
// Order handlers
// ==============================

func (s *Server) handleCreateLimitOrder(w http.ResponseWriter, r *http.Request) {
	var req LimitOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}
	price, ok := parseAmount(w, req.Price)
	if !ok {
		return
	}

	var id uint64
	err := s.host.Execute("create_limit_order", caller, func(l *ledger.Ledger) error {
		var err error
		id, err = l.CreateLimitOrder(caller, amount, price, ledger.OrderKind(req.Kind))
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("order_created", caller, map[string]any{
		"id":     id,
		"kind":   ledger.OrderKind(req.Kind).String(),
		"amount": amount.Dec(),
		"price":  price.Dec(),
	})
	respondJSON(w, IDResponse{ID: id})
}

func (s *Server) handleCreateStopLoss(w http.ResponseWriter, r *http.Request) {
	var req StopLossRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}
	trigger, ok := parseAmount(w, req.TriggerPrice)
	if !ok {
		return
	}

	var id uint64
	err := s.host.Execute("create_stop_loss", caller, func(l *ledger.Ledger) error {
		var err error
		id, err = l.CreateStopLoss(caller, amount, trigger)
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("order_created", caller, map[string]any{
		"id":           id,
		"kind":         "stop",
		"amount":       amount.Dec(),
		"triggerPrice": trigger.Dec(),
	})
	respondJSON(w, IDResponse{ID: id})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}

	err := s.host.Execute("cancel_order", caller, func(l *ledger.Ledger) error {
		return l.CancelOrder(caller, req.OrderID)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("order_cancelled", caller, map[string]any{"id": req.OrderID})
	respondOK(w)
}

func (s *Server) handleExecuteOrder(w http.ResponseWriter, r *http.Request) {
	var req ExecuteOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}
	owner, ok := parseAddress(w, req.Owner)
	if !ok {
		return
	}

	err := s.host.Execute("execute_order", caller, func(l *ledger.Ledger) error {
		return l.ExecuteOrder(caller, owner, req.OrderID)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("order_executed", caller, map[string]any{
		"id":    req.OrderID,
		"owner": owner.Hex(),
	})
	respondOK(w)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	owner, ok := parseAddress(w, vars["address"])
	if !ok {
		return
	}
	id, ok := parseID(w, vars["id"])
	if !ok {
		return
	}

	var ord *ledger.Order
	err := s.host.View(func(l *ledger.Ledger) error {
		var err error
		ord, err = l.GetOrder(owner, id)
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	if ord == nil {
		respondNotFound(w, "order not found")
		return
	}
	respondJSON(w, OrderInfo{
		ID:        ord.ID,
		Owner:     ord.Owner.Hex(),
		Kind:      ord.Kind.String(),
		Amount:    ord.Amount.Dec(),
		Price:     ord.Price.Dec(),
		Status:    ord.Status.String(),
		CreatedAt: ord.CreatedAt,
		UpdatedAt: ord.UpdatedAt,
	})
}

// ==============================
// Admin handlers
// ==============================

func (s *Server) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	var req SetPausedRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}

	err := s.host.Execute("set_paused", caller, func(l *ledger.Ledger) error {
		return l.SetPaused(caller, req.Paused)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("paused_changed", caller, map[string]any{"paused": req.Paused})
	respondOK(w)
}

func (s *Server) handleSetRatio(w http.ResponseWriter, r *http.Request) {
	var req SetRatioRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}
	ratio, ok := parseAmount(w, req.Ratio)
	if !ok {
		return
	}

	err := s.host.Execute("set_liquid_ratio", caller, func(l *ledger.Ledger) error {
		return l.SetLiquidStakeRatio(caller, ratio)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("ratio_changed", caller, map[string]any{"ratio": ratio.Dec()})
	respondOK(w)
}

func (s *Server) handleSetMaxLeverage(w http.ResponseWriter, r *http.Request) {
	var req SetMaxLeverageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}

	err := s.host.Execute("set_max_leverage", caller, func(l *ledger.Ledger) error {
		return l.SetMaxLeverage(caller, req.MaxLeverage)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish("max_leverage_changed", caller, map[string]any{"maxLeverage": req.MaxLeverage})
	respondOK(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helpers
// ==============================

// handleAmountOp covers the entry points whose request is (caller, amount).
func (s *Server) handleAmountOp(w http.ResponseWriter, r *http.Request, op string, fn func(*ledger.Ledger, common.Address, *uint256.Int) error) {
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, req.Caller)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	err := s.host.Execute(op, caller, func(l *ledger.Ledger) error {
		return fn(l, caller, amount)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.publish(op, caller, map[string]any{"amount": amount.Dec()})
	respondOK(w)
}

// respondAccountAmount covers the read entry points keyed by one account.
func (s *Server) respondAccountAmount(w http.ResponseWriter, r *http.Request, fn func(*ledger.Ledger, common.Address) (*uint256.Int, error)) {
	vars := mux.Vars(r)
	addr, ok := parseAddress(w, vars["address"])
	if !ok {
		return
	}

	var amount *uint256.Int
	err := s.host.View(func(l *ledger.Ledger) error {
		var err error
		amount, err = fn(l, addr)
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, AmountResponse{Amount: amount.Dec()})
}

func (s *Server) publish(event string, caller common.Address, data map[string]any) {
	s.hub.Publish(Event{
		Type:   event,
		Caller: caller.Hex(),
		Data:   data,
		TS:     s.host.Now().UnixMilli(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondStatus(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Detail: err.Error()})
		return false
	}
	return true
}

func parseAddress(w http.ResponseWriter, raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		respondStatus(w, http.StatusBadRequest, ErrorResponse{Error: "invalid address", Detail: raw})
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func parseAmount(w http.ResponseWriter, raw string) (*uint256.Int, bool) {
	amount, err := uint256.FromDecimal(raw)
	if err != nil {
		respondStatus(w, http.StatusBadRequest, ErrorResponse{Error: "invalid amount", Detail: raw})
		return nil, false
	}
	return amount, true
}

func parseID(w http.ResponseWriter, raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondStatus(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id", Detail: raw})
		return 0, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func respondOK(w http.ResponseWriter) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func respondNotFound(w http.ResponseWriter, msg string) {
	respondStatus(w, http.StatusNotFound, ErrorResponse{Error: msg})
}

func respondStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps ledger errors to HTTP statuses; anything uncategorized
// is a 500.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrContractPaused):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrAmountOverflow):
		status = http.StatusBadRequest
	}
	respondStatus(w, status, ErrorResponse{Error: err.Error(), Code: ledger.Code(err)})
}
