package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"kartify/config"
	"kartify/pkg/checksum"
)

const (
	payEndpoint    = "/pg/v1/pay"
	statusEndpoint = "/pg/v1/status"
	refundEndpoint = "/pg/v1/refund"

	codeInternalError = "INTERNAL_ERROR"
)

// PhonePeClient talks to the PhonePe payment gateway. Construct once at
// startup and inject; it keeps no mutable state beyond the HTTP client.
type PhonePeClient struct {
	merchantID  string
	saltKey     string
	saltIndex   string
	baseURL     string
	redirectURL string
	callbackURL string
	client      *http.Client
}

func NewPhonePeClient(cfg *config.PhonePeConfig) *PhonePeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PhonePeClient{
		merchantID:  cfg.MerchantID,
		saltKey:     cfg.SaltKey,
		saltIndex:   cfg.SaltIndex,
		baseURL:     cfg.BaseURL,
		redirectURL: cfg.RedirectURL,
		callbackURL: cfg.CallbackBaseURL + "/api/payments/callback",
		client:      &http.Client{Timeout: timeout},
	}
}

type payInstrument struct {
	Type string `json:"type"`
}

type payPayload struct {
	MerchantID            string        `json:"merchantId"`
	MerchantTransactionID string        `json:"merchantTransactionId"`
	MerchantUserID        string        `json:"merchantUserId"`
	Amount                int64         `json:"amount"` // paise
	RedirectURL           string        `json:"redirectUrl"`
	RedirectMode          string        `json:"redirectMode"`
	CallbackURL           string        `json:"callbackUrl"`
	PaymentInstrument     payInstrument `json:"paymentInstrument"`
}

type refundPayload struct {
	MerchantID            string `json:"merchantId"`
	OriginalTransactionID string `json:"originalTransactionId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	Amount                int64  `json:"amount"` // paise
	CallbackURL           string `json:"callbackUrl"`
}

// providerEnvelope is the outer JSON shape of every PhonePe response.
type providerEnvelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initiateData struct {
	MerchantTransactionID string `json:"merchantTransactionId"`
	InstrumentResponse    struct {
		Type         string `json:"type"`
		RedirectInfo struct {
			URL    string `json:"url"`
			Method string `json:"method"`
		} `json:"redirectInfo"`
	} `json:"instrumentResponse"`
}

type statusData struct {
	MerchantTransactionID string          `json:"merchantTransactionId"`
	TransactionID         string          `json:"transactionId"`
	Amount                int64           `json:"amount"`
	State                 string          `json:"state"`
	ResponseCode          string          `json:"responseCode"`
	PaymentInstrument     json.RawMessage `json:"paymentInstrument"`
}

func (p *PhonePeClient) InitiatePayment(ctx context.Context, req InitiateRequest) Response {
	payload := payPayload{
		MerchantID:            p.merchantID,
		MerchantTransactionID: req.MerchantTransactionID,
		MerchantUserID:        "USR" + strconv.FormatUint(uint64(req.UserID), 10),
		Amount:                ToMinorUnits(req.Amount),
		RedirectURL:           p.redirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           p.callbackURL,
		PaymentInstrument:     payInstrument{Type: "PAY_PAGE"},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return p.failure(fmt.Sprintf("marshal pay payload: %v", err))
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	xVerify := checksum.Compute(encoded, payEndpoint, p.saltKey, p.saltIndex)

	log.Printf("[PHONEPE] POST %s mtid=%s amount_paise=%d", payEndpoint, req.MerchantTransactionID, payload.Amount)
	env, fail := p.post(ctx, payEndpoint, encoded, xVerify)
	if fail != nil {
		return *fail
	}
	resp := Response{Success: env.Success, Code: env.Code, Message: env.Message}
	if !env.Success {
		return resp
	}
	var data initiateData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return p.failure(fmt.Sprintf("decode pay response: %v", err))
	}
	resp.RedirectURL = data.InstrumentResponse.RedirectInfo.URL
	return resp
}

func (p *PhonePeClient) CheckStatus(ctx context.Context, merchantTransactionID string) Response {
	endpoint := statusEndpoint + "/" + p.merchantID + "/" + merchantTransactionID
	xVerify := checksum.Compute("", endpoint, p.saltKey, p.saltIndex)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint, nil)
	if err != nil {
		return p.failure(fmt.Sprintf("build status request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", xVerify)
	req.Header.Set("X-MERCHANT-ID", p.merchantID)

	log.Printf("[PHONEPE] GET %s", endpoint)
	env, fail := p.do(req)
	if fail != nil {
		return *fail
	}
	resp := Response{Success: env.Success, Code: env.Code, Message: env.Message}
	if len(env.Data) == 0 {
		return resp
	}
	var data statusData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return p.failure(fmt.Sprintf("decode status response: %v", err))
	}
	resp.ProviderTransactionID = data.TransactionID
	resp.State = data.State
	resp.ResponseCode = data.ResponseCode
	resp.Instrument = data.PaymentInstrument
	return resp
}

func (p *PhonePeClient) InitiateRefund(ctx context.Context, req RefundRequest) Response {
	payload := refundPayload{
		MerchantID:            p.merchantID,
		OriginalTransactionID: req.TransactionID,
		MerchantTransactionID: req.MerchantRefundID,
		Amount:                ToMinorUnits(req.Amount),
		CallbackURL:           p.callbackURL,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return p.failure(fmt.Sprintf("marshal refund payload: %v", err))
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	xVerify := checksum.Compute(encoded, refundEndpoint, p.saltKey, p.saltIndex)

	log.Printf("[PHONEPE] POST %s refund_id=%s original=%s amount_paise=%d", refundEndpoint, req.MerchantRefundID, req.TransactionID, payload.Amount)
	env, fail := p.post(ctx, refundEndpoint, encoded, xVerify)
	if fail != nil {
		return *fail
	}
	resp := Response{Success: env.Success, Code: env.Code, Message: env.Message}
	if len(env.Data) == 0 {
		return resp
	}
	var data statusData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return p.failure(fmt.Sprintf("decode refund response: %v", err))
	}
	resp.ProviderTransactionID = data.TransactionID
	resp.State = data.State
	resp.ResponseCode = data.ResponseCode
	return resp
}

// VerifyCallback checks the X-VERIFY header against the base64 callback body.
func (p *PhonePeClient) VerifyCallback(signature, base64Body string) bool {
	return checksum.Verify(signature, base64Body, p.saltKey, p.saltIndex)
}

// post sends the standard base64-wrapped request body. A non-nil Response
// means the call failed before a usable provider envelope was obtained.
func (p *PhonePeClient) post(ctx context.Context, endpoint, encodedPayload, xVerify string) (providerEnvelope, *Response) {
	body, _ := json.Marshal(map[string]string{"request": encodedPayload})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		fail := p.failure(fmt.Sprintf("build request: %v", err))
		return providerEnvelope{}, &fail
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", xVerify)
	return p.do(req)
}

// do executes the request and decodes the provider envelope. Transport
// errors, timeouts and malformed bodies are normalized into a failure
// Response; a non-2xx status with a parseable envelope is left to the caller
// since it still carries the provider's code and message.
func (p *PhonePeClient) do(req *http.Request) (providerEnvelope, *Response) {
	resp, err := p.client.Do(req)
	if err != nil {
		msg := fmt.Sprintf("gateway request: %v", err)
		if req.Context().Err() == context.DeadlineExceeded || isTimeout(err) {
			msg = "gateway timeout"
		}
		fail := p.failure(msg)
		return providerEnvelope{}, &fail
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fail := p.failure(fmt.Sprintf("read gateway response: %v", err))
		return providerEnvelope{}, &fail
	}
	log.Printf("[PHONEPE] response status=%d body=%s", resp.StatusCode, string(respBody))
	var env providerEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		fail := p.failure(fmt.Sprintf("malformed gateway response: %v", err))
		return providerEnvelope{}, &fail
	}
	if (resp.StatusCode < 200 || resp.StatusCode > 299) && env.Code == "" {
		fail := p.failure(fmt.Sprintf("gateway status %d", resp.StatusCode))
		return providerEnvelope{}, &fail
	}
	return env, nil
}

func (p *PhonePeClient) failure(message string) Response {
	return Response{Success: false, Code: codeInternalError, Message: message}
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}
