package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/native/ledger"
	"nftmarket/native/nftmarket"
	"nftmarket/state"
	"nftmarket/storage"
)

const (
	testSellerAccount = "0x0101010101010101010101010101010101010101"
	testBuyerAccount  = "0x0202020202020202020202020202020202020202"
)

func newTestServer(t *testing.T, token string) *Server {
	t.Helper()
	st := state.NewMarketState(storage.NewMemDB())

	book := ledger.NewBook()
	book.SetState(st)

	dir := state.NewDirectory()
	var seller, buyer [20]byte
	for i := range seller {
		seller[i] = 0x01
		buyer[i] = 0x02
	}
	dir.RegisterMember(1, seller)
	dir.RegisterMember(2, buyer)
	dir.RegisterChannel(7, state.ChannelEntry{OwnerAccount: seller})

	engine := nftmarket.NewEngine(nftmarket.DefaultBounds(), 200)
	engine.SetState(st)
	engine.SetLedger(book)
	engine.SetMembership(dir)
	engine.SetChannelRegistry(dir)
	engine.SetFeeTreasury([20]byte{0xFE})

	_, err := book.DepositCreating(buyer, big.NewInt(1_000))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(engine, token, logger)
	server.SetBalanceReader(st)
	return server
}

func call(t *testing.T, server *Server, token, method string, params interface{}) RPCResponse {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  []json.RawMessage{raw},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var resp RPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func mintAsset(t *testing.T, server *Server) string {
	t.Helper()
	owner := uint64(1)
	resp := call(t, server, "", "market_mint", mintParams{
		Channel:     7,
		Reference:   "01",
		OwnerMember: &owner,
	})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	return result["id"].(string)
}

func TestMintAndGetAsset(t *testing.T) {
	server := newTestServer(t, "")
	id := mintAsset(t, server)

	resp := call(t, server, "", "market_getAsset", getAssetParams{Asset: id})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	require.Equal(t, "member:1", result["owner"])
	require.Equal(t, "idle", result["status"])
}

func TestBuyNowFlowOverRPC(t *testing.T) {
	server := newTestServer(t, "")
	id := mintAsset(t, server)

	resp := call(t, server, "", "market_startBuyNow", startBuyNowParams{
		assetParams: assetParams{
			callerParams: callerParams{Member: 1, Account: testSellerAccount},
			Asset:        id,
		},
		Price: "500",
	})
	require.Nil(t, resp.Error)

	resp = call(t, server, "", "market_buyNow", assetParams{
		callerParams: callerParams{Member: 2, Account: testBuyerAccount},
		Asset:        id,
	})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	require.Equal(t, "member:2", result["owner"])
	require.Equal(t, "idle", result["status"])

	// Buying again conflicts: the asset is no longer listed.
	resp = call(t, server, "", "market_buyNow", assetParams{
		callerParams: callerParams{Member: 2, Account: testBuyerAccount},
		Asset:        id,
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMarketConflict, resp.Error.Code)
}

func TestUnknownMethod(t *testing.T) {
	server := newTestServer(t, "")
	resp := call(t, server, "", "market_bogus", struct{}{})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestInvalidParamsRejected(t *testing.T) {
	server := newTestServer(t, "")
	id := mintAsset(t, server)
	resp := call(t, server, "", "market_buyNow", assetParams{
		callerParams: callerParams{Member: 2, Account: "nothex"},
		Asset:        id,
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMarketInvalidParams, resp.Error.Code)
}

func TestBearerTokenRequired(t *testing.T) {
	server := newTestServer(t, "secret")
	owner := uint64(1)
	params := mintParams{Channel: 7, Reference: "02", OwnerMember: &owner}

	resp := call(t, server, "", "market_mint", params)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	resp = call(t, server, "wrong", "market_mint", params)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	resp = call(t, server, "secret", "market_mint", params)
	require.Nil(t, resp.Error)
}

func TestGetBalance(t *testing.T) {
	server := newTestServer(t, "")

	resp := call(t, server, "", "market_getBalance", getBalanceParams{Account: testBuyerAccount})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	require.Equal(t, "1000", result["balance"])
	require.Equal(t, "0", result["reserved"])

	// Unknown accounts read as zero rather than erroring.
	resp = call(t, server, "", "market_getBalance", getBalanceParams{
		Account: "0x0909090909090909090909090909090909090909",
	})
	require.Nil(t, resp.Error)
	result = resp.Result.(map[string]interface{})
	require.Equal(t, "0", result["balance"])
}

func TestGetAssetNotFound(t *testing.T) {
	server := newTestServer(t, "")
	resp := call(t, server, "", "market_getAsset", getAssetParams{
		Asset: fmt.Sprintf("%064d", 0),
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMarketNotFound, resp.Error.Code)
}
