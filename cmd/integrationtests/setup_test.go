package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "neighborbid/internal/biddingService"
	"neighborbid/internal/ledger"
	model "neighborbid/internal/models"
	"neighborbid/internal/repository"
	"neighborbid/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// fixtureWallet seeds one wallet with an opening balance.
type fixtureWallet struct {
	UserID  string
	Balance int64
}

// SetupTestRouter initializes the router with in-memory stores seeded
// with the given auctions and wallets.
func SetupTestRouter(t *testing.T, auctions []model.Auction, wallets []fixtureWallet) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, a := range auctions {
		if err := repo.AddAuction(a); err != nil {
			t.Fatalf("failed to seed auction %s: %v", a.AuctionID, err)
		}
	}

	wl := ledger.NewLedger()
	for _, w := range wallets {
		wl.CreateWallet(w.UserID, decimal.NewFromInt(w.Balance))
	}

	service := bidding.NewBiddingService(repo, wl, 0)
	return server.SetupRouter(service)
}

// openAuction builds an active auction with a one-hour window around now.
func openAuction(auctionID, sellerID string, startPrice, bidUnit int64) model.Auction {
	now := time.Now().UTC()
	return model.Auction{
		AuctionID:    auctionID,
		Title:        auctionID,
		SellerID:     sellerID,
		StartPrice:   decimal.NewFromInt(startPrice),
		CurrentPrice: decimal.Zero,
		BidUnit:      decimal.NewFromInt(bidUnit),
		StartTime:    now.Add(-time.Hour),
		EndTime:      now.Add(time.Hour),
		Status:       model.AuctionActive,
	}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// data extracts the data envelope from a parsed response.
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return d
}
