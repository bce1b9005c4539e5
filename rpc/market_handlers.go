package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"nftmarket/native/nftmarket"
	"nftmarket/observability/metrics"
)

const (
	codeMarketInvalidParams = -32061
	codeMarketNotFound      = -32062
	codeMarketForbidden     = -32063
	codeMarketConflict      = -32064
	codeMarketInternal      = -32065
)

type callerParams struct {
	Member  uint64 `json:"member"`
	Account string `json:"account"`
}

type mintParams struct {
	Channel     uint64  `json:"channel"`
	Reference   string  `json:"reference"`
	OwnerMember *uint64 `json:"ownerMember,omitempty"`
	RoyaltyBps  *uint32 `json:"royaltyBps,omitempty"`
}

type assetParams struct {
	callerParams
	Asset string `json:"asset"`
}

type startBuyNowParams struct {
	assetParams
	Price string `json:"price"`
}

type startOfferParams struct {
	assetParams
	To    uint64 `json:"to"`
	Price string `json:"price,omitempty"`
}

type startAuctionParams struct {
	assetParams
	AuctionType     string  `json:"auctionType"`
	Duration        uint64  `json:"duration,omitempty"`
	ExtensionPeriod uint64  `json:"extensionPeriod,omitempty"`
	BidLockDuration uint64  `json:"bidLockDuration,omitempty"`
	StartingPrice   string  `json:"startingPrice"`
	BidStep         string  `json:"bidStep"`
	StartsAt        *uint64 `json:"startsAt,omitempty"`
}

type placeBidParams struct {
	assetParams
	Amount string `json:"amount"`
}

type getAssetParams struct {
	Asset string `json:"asset"`
}

type getBalanceParams struct {
	Account string `json:"account"`
}

type balanceJSON struct {
	Account  string `json:"account"`
	Balance  string `json:"balance"`
	Reserved string `json:"reserved"`
}

type bidJSON struct {
	Bidder   uint64 `json:"bidder"`
	Account  string `json:"account"`
	Amount   string `json:"amount"`
	PlacedAt uint64 `json:"placedAt"`
}

type auctionJSON struct {
	Type            string   `json:"type"`
	Duration        uint64   `json:"duration,omitempty"`
	ExtensionPeriod uint64   `json:"extensionPeriod,omitempty"`
	BidLockDuration uint64   `json:"bidLockDuration,omitempty"`
	StartsAt        uint64   `json:"startsAt"`
	EndsAt          uint64   `json:"endsAt,omitempty"`
	StartingPrice   string   `json:"startingPrice"`
	BidStep         string   `json:"bidStep"`
	LastBid         *bidJSON `json:"lastBid,omitempty"`
}

type assetJSON struct {
	ID         string       `json:"id"`
	Channel    uint64       `json:"channel"`
	Owner      string       `json:"owner"`
	RoyaltyBps *uint32      `json:"royaltyBps,omitempty"`
	Status     string       `json:"status"`
	Price      string       `json:"price,omitempty"`
	OfferTo    uint64       `json:"offerTo,omitempty"`
	Auction    *auctionJSON `json:"auction,omitempty"`
}

type settlementJSON struct {
	Amount            string `json:"amount"`
	Fee               string `json:"fee"`
	Royalty           string `json:"royalty"`
	Proceeds          string `json:"proceeds"`
	RoyaltyToTreasury bool   `json:"royaltyToTreasury,omitempty"`
}

func (s *Server) routes() map[string]func(http.ResponseWriter, *http.Request, *RPCRequest) {
	return map[string]func(http.ResponseWriter, *http.Request, *RPCRequest){
		"market_mint":              s.handleMint,
		"market_getAsset":          s.handleGetAsset,
		"market_getBalance":        s.handleGetBalance,
		"market_startBuyNow":       s.handleStartBuyNow,
		"market_buyNow":            s.handleBuyNow,
		"market_startOffer":        s.handleStartOffer,
		"market_acceptOffer":       s.handleAcceptOffer,
		"market_startAuction":      s.handleStartAuction,
		"market_placeBid":          s.handlePlaceBid,
		"market_cancelBid":         s.handleCancelBid,
		"market_completeAuction":   s.handleCompleteAuction,
		"market_cancelTransaction": s.handleCancelTransaction,
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAccount(value string) ([20]byte, error) {
	var addr [20]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(value), "0x"))
	if err != nil {
		return addr, fmt.Errorf("invalid account: %w", err)
	}
	if len(raw) != 20 {
		return addr, fmt.Errorf("account must be 20 bytes")
	}
	copy(addr[:], raw)
	return addr, nil
}

func parseAssetID(value string) (nftmarket.AssetID, error) {
	var id nftmarket.AssetID
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(value), "0x"))
	if err != nil {
		return id, fmt.Errorf("invalid asset id: %w", err)
	}
	if len(raw) != 32 {
		return id, fmt.Errorf("asset id must be 32 bytes")
	}
	copy(id[:], raw)
	return id, nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}

func marshalAsset(asset *nftmarket.Asset) *assetJSON {
	out := &assetJSON{
		ID:         hex.EncodeToString(asset.ID[:]),
		Channel:    uint64(asset.Channel),
		RoyaltyBps: asset.RoyaltyBps,
	}
	switch asset.Owner.Kind {
	case nftmarket.OwnerChannel:
		out.Owner = "channel"
	case nftmarket.OwnerMember:
		out.Owner = fmt.Sprintf("member:%d", asset.Owner.Member)
	}
	switch asset.Status.Kind {
	case nftmarket.StatusIdle:
		out.Status = "idle"
	case nftmarket.StatusBuyNow:
		out.Status = "buyNow"
		out.Price = asset.Status.Price.String()
	case nftmarket.StatusOffer:
		out.Status = "offer"
		out.OfferTo = uint64(asset.Status.OfferTo)
		if asset.Status.Price != nil {
			out.Price = asset.Status.Price.String()
		}
	case nftmarket.StatusAuction:
		out.Status = "auction"
		out.Auction = marshalAuction(asset.Status.Auction)
	}
	return out
}

func marshalAuction(auction *nftmarket.AuctionRecord) *auctionJSON {
	if auction == nil {
		return nil
	}
	out := &auctionJSON{
		Duration:        auction.Duration,
		ExtensionPeriod: auction.ExtensionPeriod,
		BidLockDuration: auction.BidLockDuration,
		StartsAt:        auction.StartsAt,
		EndsAt:          auction.EndsAt,
		StartingPrice:   auction.StartingPrice.String(),
		BidStep:         auction.BidStep.String(),
	}
	switch auction.Type {
	case nftmarket.AuctionEnglish:
		out.Type = "english"
	case nftmarket.AuctionOpen:
		out.Type = "open"
	}
	if bid := auction.LastBid; bid != nil {
		out.LastBid = &bidJSON{
			Bidder:   uint64(bid.Bidder),
			Account:  hex.EncodeToString(bid.BidderAccount[:]),
			Amount:   bid.Amount.String(),
			PlacedAt: bid.PlacedAt,
		}
	}
	return out
}

func marshalSettlement(settlement *nftmarket.Settlement) *settlementJSON {
	if settlement == nil {
		return nil
	}
	return &settlementJSON{
		Amount:            settlement.Amount.String(),
		Fee:               settlement.Fee.String(),
		Royalty:           settlement.Royalty.String(),
		Proceeds:          settlement.Proceeds.String(),
		RoyaltyToTreasury: settlement.RoyaltyToTreasury,
	}
}

// engineErrorCode maps engine errors onto the marketplace RPC code space.
func engineErrorCode(err error) (int, int) {
	switch {
	case errors.Is(err, nftmarket.ErrAssetNotFound):
		return http.StatusNotFound, codeMarketNotFound
	case errors.Is(err, nftmarket.ErrUnauthorized),
		errors.Is(err, nftmarket.ErrNotOwner),
		errors.Is(err, nftmarket.ErrNotLastBidder):
		return http.StatusForbidden, codeMarketForbidden
	case errors.Is(err, nftmarket.ErrAssetExists),
		errors.Is(err, nftmarket.ErrPendingTransaction),
		errors.Is(err, nftmarket.ErrNoPendingTransaction),
		errors.Is(err, nftmarket.ErrNotInBuyNowState),
		errors.Is(err, nftmarket.ErrNoIncomingOffers),
		errors.Is(err, nftmarket.ErrNotInAuctionState),
		errors.Is(err, nftmarket.ErrAuctionNotStarted),
		errors.Is(err, nftmarket.ErrAuctionCannotBeCompleted),
		errors.Is(err, nftmarket.ErrLastBidAbsent),
		errors.Is(err, nftmarket.ErrBidStepViolated),
		errors.Is(err, nftmarket.ErrStartingPriceViolated),
		errors.Is(err, nftmarket.ErrBidLockActive),
		errors.Is(err, nftmarket.ErrBidNotCancellable),
		errors.Is(err, nftmarket.ErrInsufficientBalance):
		return http.StatusConflict, codeMarketConflict
	case errors.Is(err, nftmarket.ErrInvalidPrice),
		errors.Is(err, nftmarket.ErrOwnerAccountUnknown):
		return http.StatusBadRequest, codeMarketInvalidParams
	}
	// Bounds violations are caller mistakes.
	for _, bound := range []error{
		nftmarket.ErrAuctionDurationUpperBound, nftmarket.ErrAuctionDurationLowerBound,
		nftmarket.ErrExtensionPeriodUpperBound, nftmarket.ErrExtensionPeriodLowerBound,
		nftmarket.ErrExtensionExceedsDuration,
		nftmarket.ErrBidLockDurationUpperBound, nftmarket.ErrBidLockDurationLowerBound,
		nftmarket.ErrBidStepUpperBound, nftmarket.ErrBidStepLowerBound,
		nftmarket.ErrStartingPriceUpperBound, nftmarket.ErrStartingPriceLowerBound,
		nftmarket.ErrRoyaltyUpperBound, nftmarket.ErrRoyaltyLowerBound,
		nftmarket.ErrStartsAtUpperBound, nftmarket.ErrStartsAtLowerBound,
	} {
		if errors.Is(err, bound) {
			return http.StatusBadRequest, codeMarketInvalidParams
		}
	}
	return http.StatusInternalServerError, codeMarketInternal
}

func (s *Server) writeEngineError(w http.ResponseWriter, req *RPCRequest, err error) {
	status, code := engineErrorCode(err)
	metrics.Market().RequestError(req.Method)
	writeError(w, status, req.ID, code, "market_error", err.Error())
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params mintParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	reference, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(params.Reference), "0x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", "reference must be hex")
		return
	}
	owner := nftmarket.Owner{Kind: nftmarket.OwnerChannel}
	if params.OwnerMember != nil {
		owner = nftmarket.Owner{Kind: nftmarket.OwnerMember, Member: nftmarket.MemberID(*params.OwnerMember)}
	}
	asset, err := s.engine.Mint(nftmarket.ChannelID(params.Channel), reference, owner, params.RoyaltyBps)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, marshalAsset(asset))
}

func (s *Server) handleGetAsset(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params getAssetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseAssetID(params.Asset)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, err := s.engine.Asset(id)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, marshalAsset(asset))
}

func (s *Server) handleGetBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if s.balances == nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "server_error", "balance queries not configured")
		return
	}
	var params getBalanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	account, err := parseAccount(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	acc, err := s.balances.LedgerAccountGet(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeMarketInternal, "market_error", err.Error())
		return
	}
	out := balanceJSON{Account: hex.EncodeToString(account[:]), Balance: "0", Reserved: "0"}
	if acc != nil {
		if acc.Balance != nil {
			out.Balance = acc.Balance.String()
		}
		if acc.Reserved != nil {
			out.Reserved = acc.Reserved.String()
		}
	}
	writeResult(w, req.ID, out)
}

// decodeCaller extracts the common caller identity triple from asset-scoped
// parameter payloads.
func decodeCaller(params assetParams) (nftmarket.MemberID, [20]byte, nftmarket.AssetID, error) {
	account, err := parseAccount(params.Account)
	if err != nil {
		return 0, [20]byte{}, nftmarket.AssetID{}, err
	}
	id, err := parseAssetID(params.Asset)
	if err != nil {
		return 0, [20]byte{}, nftmarket.AssetID{}, err
	}
	return nftmarket.MemberID(params.Member), account, id, nil
}

func (s *Server) handleStartBuyNow(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params startBuyNowParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params.assetParams)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, err := s.engine.StartBuyNow(member, account, id, price)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, marshalAsset(asset))
}

func (s *Server) handleBuyNow(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params assetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, err := s.engine.BuyNow(member, account, id)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	metrics.Market().BuyNowCompleted()
	writeResult(w, req.ID, marshalAsset(asset))
}

func (s *Server) handleStartOffer(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params startOfferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params.assetParams)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	var price *big.Int
	if strings.TrimSpace(params.Price) != "" {
		price, err = parseAmount(params.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
			return
		}
	}
	asset, err := s.engine.StartOffer(member, account, id, nftmarket.MemberID(params.To), price)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, marshalAsset(asset))
}

func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params assetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, settlement, err := s.engine.AcceptOffer(member, account, id)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	metrics.Market().OfferAccepted()
	if settlement != nil {
		amount, _ := new(big.Float).SetInt(settlement.Amount).Float64()
		metrics.Market().SettlementVolume("offer", amount)
	}
	writeResult(w, req.ID, struct {
		Asset      *assetJSON      `json:"asset"`
		Settlement *settlementJSON `json:"settlement,omitempty"`
	}{marshalAsset(asset), marshalSettlement(settlement)})
}

func (s *Server) handleStartAuction(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params startAuctionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params.assetParams)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	auctionParams := nftmarket.AuctionParams{
		Duration:        params.Duration,
		ExtensionPeriod: params.ExtensionPeriod,
		BidLockDuration: params.BidLockDuration,
		StartsAt:        params.StartsAt,
	}
	switch strings.ToLower(strings.TrimSpace(params.AuctionType)) {
	case "english":
		auctionParams.Type = nftmarket.AuctionEnglish
	case "open":
		auctionParams.Type = nftmarket.AuctionOpen
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", "auctionType must be english or open")
		return
	}
	if auctionParams.StartingPrice, err = parseAmount(params.StartingPrice); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	if auctionParams.BidStep, err = parseAmount(params.BidStep); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, err := s.engine.StartAuction(member, account, id, auctionParams)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, marshalAsset(asset))
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params placeBidParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params.assetParams)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, err := s.engine.PlaceBid(member, account, id, amount)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	metrics.Market().BidPlaced()
	writeResult(w, req.ID, marshalAsset(asset))
}

func (s *Server) handleCancelBid(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params assetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, err := s.engine.CancelBid(member, account, id)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	metrics.Market().BidCancelled()
	writeResult(w, req.ID, marshalAsset(asset))
}

func (s *Server) handleCompleteAuction(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params assetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, settlement, err := s.engine.CompleteAuction(member, account, id)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	metrics.Market().AuctionCompleted()
	if settlement != nil {
		amount, _ := new(big.Float).SetInt(settlement.Amount).Float64()
		metrics.Market().SettlementVolume("auction", amount)
	}
	writeResult(w, req.ID, struct {
		Asset      *assetJSON      `json:"asset"`
		Settlement *settlementJSON `json:"settlement,omitempty"`
	}{marshalAsset(asset), marshalSettlement(settlement)})
}

func (s *Server) handleCancelTransaction(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params assetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	member, account, id, err := decodeCaller(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return
	}
	asset, err := s.engine.CancelTransaction(member, account, id)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	metrics.Market().Cancelled()
	writeResult(w, req.ID, marshalAsset(asset))
}
