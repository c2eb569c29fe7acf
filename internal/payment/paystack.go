package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const ProviderPaystack = "paystack"

type Paystack struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewPaystack(secretKey, baseURL string, client *http.Client) *Paystack {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Paystack{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    client,
	}
}

func (p *Paystack) Name() string { return ProviderPaystack }

func (p *Paystack) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	payload := map[string]any{
		"email":        req.Email,
		"amount":       minorUnits(req.Amount),
		"currency":     req.Currency,
		"callback_url": req.CallbackURL,
		"metadata":     req.Metadata,
	}
	if req.Reference != "" {
		payload["reference"] = req.Reference
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal paystack request: %w", err)
	}

	res, err := p.do(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	return &InitResult{
		Provider:         ProviderPaystack,
		Reference:        res.Get("data.reference").String(),
		AuthorizationURL: res.Get("data.authorization_url").String(),
	}, nil
}

func (p *Paystack) Verify(ctx context.Context, reference string) (*Verification, error) {
	res, err := p.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	status := res.Get("data.status").String()
	v := &Verification{
		Provider:  ProviderPaystack,
		Reference: reference,
		Status:    status,
		Paid:      status == "success",
		Amount:    float64(res.Get("data.amount").Int()) / 100,
		Currency:  res.Get("data.currency").String(),
		Metadata:  map[string]string{},
	}
	if md := res.Get("data.metadata"); md.IsObject() {
		md.ForEach(func(key, value gjson.Result) bool {
			v.Metadata[key.String()] = value.String()
			return true
		})
	}
	return v, nil
}

func (p *Paystack) do(ctx context.Context, method, path string, body []byte) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("paystack %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("paystack %s: read body: %w", path, err)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("paystack %s: invalid response (HTTP %d)", path, resp.StatusCode)
	}

	res := gjson.ParseBytes(raw)
	if resp.StatusCode >= http.StatusBadRequest || !res.Get("status").Bool() {
		return gjson.Result{}, fmt.Errorf("paystack %s: HTTP %d: %s", path, resp.StatusCode, res.Get("message").String())
	}
	return res, nil
}
