package clob

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClient_SubmitOrder(t *testing.T) {
	var gotReq OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/order" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "key" || r.Header.Get("X-Api-Secret") != "secret" {
			t.Error("auth headers missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(OrderResponse{
			OrderID:     "exch-1",
			Status:      StatusMatched,
			SizeMatched: dec("10"),
			AvgPrice:    dec("0.64"),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	resp, err := c.SubmitOrder(context.Background(), OrderRequest{
		ClientOrderID: "ord-1",
		TokenID:       "tok-1",
		Side:          "BUY",
		Price:         dec("0.65"),
		Size:          dec("10"),
	})
	if err != nil {
		t.Fatalf("SubmitOrder error: %v", err)
	}

	if gotReq.ClientOrderID != "ord-1" || gotReq.TokenID != "tok-1" {
		t.Errorf("request not forwarded: %+v", gotReq)
	}
	if resp.OrderID != "exch-1" || resp.Status != StatusMatched {
		t.Errorf("response = %+v", resp)
	}
	if !resp.SizeMatched.Equal(dec("10")) || !resp.AvgPrice.Equal(dec("0.64")) {
		t.Errorf("decimals mangled: %+v", resp)
	}
}

func TestClient_SubmitOrderServiceRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(OrderResponse{ErrorMsg: "insufficient balance"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	_, err := c.SubmitOrder(context.Background(), OrderRequest{ClientOrderID: "ord-1"})
	if err == nil || !strings.Contains(err.Error(), "insufficient balance") {
		t.Errorf("expected rejection error, got %v", err)
	}
}

func TestClient_SubmitOrderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	_, err := c.SubmitOrder(context.Background(), OrderRequest{ClientOrderID: "ord-1"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestClient_CancelOrder(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	if err := c.CancelOrder(context.Background(), "exch-9"); err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if gotPath != "/order/exch-9" {
		t.Errorf("path = %s, want /order/exch-9", gotPath)
	}
}

func TestClient_GetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/order/exch-2" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(OrderResponse{OrderID: "exch-2", Status: StatusLive})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	resp, err := c.GetOrder(context.Background(), "exch-2")
	if err != nil {
		t.Fatalf("GetOrder error: %v", err)
	}
	if resp.Status != StatusLive {
		t.Errorf("status = %s, want LIVE", resp.Status)
	}
}
