package wechatpay

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testAPIV3Key = "12345678901234567890123456789012"

func TestNewClientDefaultBaseURL(t *testing.T) {
	client, err := NewClient(buildTestConfig(""))
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.cfg.BaseURL != defaultBaseURL {
		t.Fatalf("base url should fallback to default, got %s", client.cfg.BaseURL)
	}
}

func TestNewClientInvalidAPIV3KeyLength(t *testing.T) {
	cfg := buildTestConfig("")
	cfg.APIV3Key = "short-key"
	if _, err := NewClient(cfg); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestNewClientRequireMerchantID(t *testing.T) {
	cfg := buildTestConfig("")
	cfg.MerchantID = ""
	if _, err := NewClient(cfg); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestCreateNativeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v3/pay/transactions/native" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "" {
			t.Fatalf("expected signed request")
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body failed: %v", err)
		}
		if payload["out_trade_no"] != "ORDER_20260830120000123001" {
			t.Fatalf("unexpected out_trade_no: %v", payload["out_trade_no"])
		}
		amount, ok := payload["amount"].(map[string]interface{})
		if !ok {
			t.Fatalf("amount payload missing")
		}
		if amount["total"] != float64(199) {
			t.Fatalf("unexpected amount total: %v", amount["total"])
		}
		if amount["currency"] != "CNY" {
			t.Fatalf("unexpected currency: %v", amount["currency"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code_url":"weixin://wxpay/bizpayurl?pr=mocked"}`))
	}))
	defer server.Close()

	client := buildTestClient(t, server.URL)
	codeURL, err := client.CreateNative(context.Background(), CreateInput{
		OrderNo:     "ORDER_20260830120000123001",
		Description: "Java课程",
		TotalFee:    199,
	})
	if err != nil {
		t.Fatalf("create native failed: %v", err)
	}
	if codeURL != "weixin://wxpay/bizpayurl?pr=mocked" {
		t.Fatalf("unexpected code url: %s", codeURL)
	}
}

func TestCreateNativeRequireAmount(t *testing.T) {
	client := buildTestClient(t, "https://api.mch.weixin.qq.com")
	if _, err := client.CreateNative(context.Background(), CreateInput{OrderNo: "ORDER_1"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestQueryOrderNotExist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"ORDER_NOT_EXIST","message":"订单不存在"}`))
	}))
	defer server.Close()

	client := buildTestClient(t, server.URL)
	if _, err := client.QueryOrder(context.Background(), "ORDER_MISSING"); !errors.Is(err, ErrOrderNotExists) {
		t.Fatalf("expected ErrOrderNotExists, got %v", err)
	}
}

func TestCloseOrderNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/pay/transactions/out-trade-no/ORDER_2001/close" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := buildTestClient(t, server.URL)
	if err := client.CloseOrder(context.Background(), "ORDER_2001"); err != nil {
		t.Fatalf("close order failed: %v", err)
	}
}

func TestQueryRefundSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/refund/domestic/refunds/REFUND_3001" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"out_refund_no":"REFUND_3001","status":"SUCCESS"}`))
	}))
	defer server.Close()

	client := buildTestClient(t, server.URL)
	body, err := client.QueryRefund(context.Background(), "REFUND_3001")
	if err != nil {
		t.Fatalf("query refund failed: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("decode refund body failed: %v", err)
	}
	if raw["status"] != "SUCCESS" {
		t.Fatalf("unexpected refund status: %v", raw["status"])
	}
}

func TestDecryptResourceRoundTrip(t *testing.T) {
	plaintext := `{"out_trade_no":"ORDER_4001","trade_state":"SUCCESS","amount":{"payer_total":199}}`
	nonce := "abcdef123456"
	associatedData := "transaction"
	body := map[string]interface{}{
		"resource": map[string]interface{}{
			"ciphertext":      encryptAES256GCM(t, testAPIV3Key, nonce, associatedData, plaintext),
			"nonce":           nonce,
			"associated_data": associatedData,
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal notify body failed: %v", err)
	}

	client := buildTestClient(t, "https://api.mch.weixin.qq.com")
	got, err := client.DecryptResource(bodyBytes)
	if err != nil {
		t.Fatalf("decrypt resource failed: %v", err)
	}
	if got != plaintext {
		t.Fatalf("decrypted plaintext mismatch: %s", got)
	}
}

func TestDecryptResourceMissingFields(t *testing.T) {
	client := buildTestClient(t, "https://api.mch.weixin.qq.com")
	if _, err := client.DecryptResource([]byte(`{"resource":{}}`)); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func encryptAES256GCM(t *testing.T, key, nonce, associatedData, plaintext string) string {
	t.Helper()
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		t.Fatalf("new cipher failed: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatalf("new gcm failed: %v", err)
	}
	sealed := gcm.Seal(nil, []byte(nonce), []byte(plaintext), []byte(associatedData))
	return base64.StdEncoding.EncodeToString(sealed)
}

func buildTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := buildTestConfig(baseURL)
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client
}

func buildTestConfig(baseURL string) *Config {
	return &Config{
		AppID:              "wx1234567890",
		MerchantID:         "1900000109",
		MerchantSerialNo:   "ABC123456789",
		MerchantPrivateKey: buildTestPrivateKey(),
		APIV3Key:           testAPIV3Key,
		NotifyURL:          "https://example.com/api/wx-pay/native/notify",
		RefundNotifyURL:    "https://example.com/api/wx-pay/refunds/notify",
		BaseURL:            baseURL,
	}
}

func buildTestPrivateKey() string {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	privateKeyDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		panic(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateKeyDER}))
}
