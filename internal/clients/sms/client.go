package sms

import (
	"SwingLab-backend/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client 是對外簡訊閘道的 REST 客戶端。
// 閘道的契約是單一 JSON POST：{from, to, body}，回 2xx 即視為送達。
type Client struct {
	apiKey     string
	baseURL    string
	fromNumber string
	httpClient *http.Client
}

// NewClient 建立簡訊閘道客戶端
func NewClient(smsCfg config.SMSClientConfig) (*Client, error) {
	if smsCfg.APIKey == "" {
		return nil, fmt.Errorf("簡訊閘道 API Key 不得為空")
	}
	if smsCfg.BaseURL == "" {
		return nil, fmt.Errorf("簡訊閘道 BaseURL 不得為空")
	}
	if smsCfg.FromNumber == "" {
		return nil, fmt.Errorf("簡訊發送號碼不得為空")
	}
	log.Printf("資訊：[SMS Client] 初始化成功，閘道: %s\n", smsCfg.BaseURL)
	return &Client{
		apiKey:     smsCfg.APIKey,
		baseURL:    smsCfg.BaseURL,
		fromNumber: smsCfg.FromNumber,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// sendRequest 是閘道的請求格式
type sendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// SendSMS 發送一則簡訊。不做重試，失敗由呼叫端記錄。
func (c *Client) SendSMS(ctx context.Context, toNumber string, body string) error {
	if toNumber == "" {
		return fmt.Errorf("收件號碼不得為空")
	}
	if body == "" {
		return fmt.Errorf("簡訊內文不得為空")
	}

	payload, err := json.Marshal(sendRequest{From: c.fromNumber, To: toNumber, Body: body})
	if err != nil {
		return fmt.Errorf("序列化簡訊請求失敗: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("建立簡訊請求失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("資訊：[SMS Client] 正在發送簡訊到 %s...\n", toNumber)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("簡訊閘道請求失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("簡訊閘道回傳非預期狀態碼 %d: %s", resp.StatusCode, string(respBody))
	}
	log.Printf("資訊：[SMS Client] 簡訊已發送到 %s。\n", toNumber)
	return nil
}
