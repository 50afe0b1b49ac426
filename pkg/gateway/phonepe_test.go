package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kartify/config"
	"kartify/pkg/checksum"

	"github.com/shopspring/decimal"
)

func testConfig(baseURL string) *config.PhonePeConfig {
	return &config.PhonePeConfig{
		MerchantID:      "MERCHANTTEST",
		SaltKey:         "salt-key",
		SaltIndex:       "1",
		BaseURL:         baseURL,
		RedirectURL:     "https://shop.example/payment/result",
		CallbackBaseURL: "https://shop.example",
		Timeout:         5 * time.Second,
	}
}

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		major string
		paise int64
	}{
		{"1", 100},
		{"1234.5", 123450},
		{"99.99", 9999},
		{"0.01", 1},
		{"500", 50000},
	}
	for _, tc := range cases {
		d, _ := decimal.NewFromString(tc.major)
		if got := ToMinorUnits(d); got != tc.paise {
			t.Errorf("ToMinorUnits(%s) = %d, want %d", tc.major, got, tc.paise)
		}
	}
}

func TestInitiatePayment(t *testing.T) {
	t.Run("Given a successful provider When initiating Then payload and checksum are correct and redirect URL returned", func(t *testing.T) {
		var gotVerify string
		var gotPayload payPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/pg/v1/pay" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			gotVerify = r.Header.Get("X-VERIFY")
			body, _ := io.ReadAll(r.Body)
			var wrapper struct {
				Request string `json:"request"`
			}
			if err := json.Unmarshal(body, &wrapper); err != nil {
				t.Fatalf("body not {request: base64}: %v", err)
			}
			raw, err := base64.StdEncoding.DecodeString(wrapper.Request)
			if err != nil {
				t.Fatalf("request not base64: %v", err)
			}
			if err := json.Unmarshal(raw, &gotPayload); err != nil {
				t.Fatalf("payload not JSON: %v", err)
			}
			// verify the checksum the client sent over its own encoded payload
			want := checksum.Compute(wrapper.Request, "/pg/v1/pay", "salt-key", "1")
			if gotVerify != want {
				t.Errorf("X-VERIFY = %q, want %q", gotVerify, want)
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"success":true,"code":"PAYMENT_INITIATED","message":"ok","data":{"merchantTransactionId":"MT-1","instrumentResponse":{"type":"PAY_PAGE","redirectInfo":{"url":"https://pay.example/checkout/abc","method":"GET"}}}}`)
		}))
		defer srv.Close()

		client := NewPhonePeClient(testConfig(srv.URL))
		resp := client.InitiatePayment(context.Background(), InitiateRequest{
			MerchantTransactionID: "MT-1",
			UserID:                7,
			Amount:                decimal.RequireFromString("1234.5"),
		})

		if !resp.Success {
			t.Fatalf("expected success, got %+v", resp)
		}
		if resp.RedirectURL != "https://pay.example/checkout/abc" {
			t.Errorf("redirect URL = %q", resp.RedirectURL)
		}
		if gotPayload.Amount != 123450 {
			t.Errorf("wire amount = %d paise, want 123450", gotPayload.Amount)
		}
		if gotPayload.MerchantID != "MERCHANTTEST" || gotPayload.MerchantTransactionID != "MT-1" {
			t.Errorf("payload ids = %q/%q", gotPayload.MerchantID, gotPayload.MerchantTransactionID)
		}
		if gotPayload.CallbackURL != "https://shop.example/api/payments/callback" {
			t.Errorf("callback URL = %q", gotPayload.CallbackURL)
		}
	})

	t.Run("Given amount of one rupee When initiating Then wire carries 100 paise", func(t *testing.T) {
		var gotAmount int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var wrapper struct {
				Request string `json:"request"`
			}
			json.Unmarshal(body, &wrapper)
			raw, _ := base64.StdEncoding.DecodeString(wrapper.Request)
			var p payPayload
			json.Unmarshal(raw, &p)
			gotAmount = p.Amount
			io.WriteString(w, `{"success":true,"code":"PAYMENT_INITIATED","data":{"instrumentResponse":{"redirectInfo":{"url":"https://pay.example/x"}}}}`)
		}))
		defer srv.Close()

		client := NewPhonePeClient(testConfig(srv.URL))
		client.InitiatePayment(context.Background(), InitiateRequest{
			MerchantTransactionID: "MT-2",
			UserID:                1,
			Amount:                decimal.NewFromInt(1),
		})
		if gotAmount != 100 {
			t.Errorf("wire amount = %d paise, want 100", gotAmount)
		}
	})

	t.Run("Given a provider rejection When initiating Then provider code is surfaced without error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"success":false,"code":"BAD_REQUEST","message":"merchant blocked"}`)
		}))
		defer srv.Close()

		client := NewPhonePeClient(testConfig(srv.URL))
		resp := client.InitiatePayment(context.Background(), InitiateRequest{MerchantTransactionID: "MT-3", Amount: decimal.NewFromInt(10)})
		if resp.Success {
			t.Fatal("expected failure")
		}
		if resp.Code != "BAD_REQUEST" || resp.Message != "merchant blocked" {
			t.Errorf("got %+v, want provider code/message", resp)
		}
	})

	t.Run("Given a malformed provider body When initiating Then failure is normalized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<html>gateway exploded</html>`)
		}))
		defer srv.Close()

		client := NewPhonePeClient(testConfig(srv.URL))
		resp := client.InitiatePayment(context.Background(), InitiateRequest{MerchantTransactionID: "MT-4", Amount: decimal.NewFromInt(10)})
		if resp.Success || resp.Code != "INTERNAL_ERROR" {
			t.Errorf("expected normalized INTERNAL_ERROR, got %+v", resp)
		}
	})

	t.Run("Given a slow provider When initiating Then timeout surfaces as a distinct failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			io.WriteString(w, `{"success":true}`)
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.Timeout = 50 * time.Millisecond
		client := NewPhonePeClient(cfg)
		resp := client.InitiatePayment(context.Background(), InitiateRequest{MerchantTransactionID: "MT-5", Amount: decimal.NewFromInt(10)})
		if resp.Success || resp.Code != "INTERNAL_ERROR" {
			t.Fatalf("expected failure, got %+v", resp)
		}
		if !strings.Contains(resp.Message, "timeout") {
			t.Errorf("expected timeout message, got %q", resp.Message)
		}
	})
}

func TestCheckStatus(t *testing.T) {
	t.Run("Given a completed payment When polling Then state and transaction id are mapped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wantPath := "/pg/v1/status/MERCHANTTEST/MT-9"
			if r.URL.Path != wantPath {
				t.Errorf("path = %s, want %s", r.URL.Path, wantPath)
			}
			if r.Header.Get("X-MERCHANT-ID") != "MERCHANTTEST" {
				t.Errorf("missing X-MERCHANT-ID")
			}
			// status checksum covers the endpoint only, no payload
			want := checksum.Compute("", wantPath, "salt-key", "1")
			if got := r.Header.Get("X-VERIFY"); got != want {
				t.Errorf("X-VERIFY = %q, want %q", got, want)
			}
			io.WriteString(w, `{"success":true,"code":"PAYMENT_SUCCESS","message":"done","data":{"merchantTransactionId":"MT-9","transactionId":"T2401","amount":50000,"state":"COMPLETED","responseCode":"SUCCESS","paymentInstrument":{"type":"UPI"}}}`)
		}))
		defer srv.Close()

		client := NewPhonePeClient(testConfig(srv.URL))
		resp := client.CheckStatus(context.Background(), "MT-9")
		if !resp.Success || resp.Code != "PAYMENT_SUCCESS" {
			t.Fatalf("got %+v", resp)
		}
		if resp.ProviderTransactionID != "T2401" || resp.State != "COMPLETED" {
			t.Errorf("mapped fields = %q/%q", resp.ProviderTransactionID, resp.State)
		}
	})
}

func TestVerifyCallback(t *testing.T) {
	client := NewPhonePeClient(testConfig("https://unused"))
	body := base64.StdEncoding.EncodeToString([]byte(`{"code":"PAYMENT_SUCCESS"}`))
	valid := checksum.Compute(body, "", "salt-key", "1")

	if !client.VerifyCallback(valid, body) {
		t.Error("expected valid callback signature to verify")
	}
	if client.VerifyCallback(valid, body+"x") {
		t.Error("expected tampered body to fail")
	}
	if client.VerifyCallback("deadbeef###1", body) {
		t.Error("expected bogus signature to fail")
	}
}
