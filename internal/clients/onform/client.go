package onform

import (
	"SwingLab-backend/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Recording 是匯入來源回傳的單筆錄影
type Recording struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	DownloadURL  string    `json:"download_url"`
	DurationSecs int64     `json:"duration_secs"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// listResponse 是列表端點的回應格式
type listResponse struct {
	Recordings []Recording `json:"recordings"`
}

// Client 是 OnForm 式影片來源的 API 客戶端。
// 存取權杖由 oauth2 的 TokenSource 取得並重用，
// 到期換發在 TokenSource 內部以鎖序列化，不會並發重複換發。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 建立匯入來源客戶端 (OAuth2 client credentials)
func NewClient(ofCfg config.OnFormClientConfig) (*Client, error) {
	if ofCfg.ClientID == "" || ofCfg.ClientSecret == "" {
		return nil, fmt.Errorf("OnForm ClientID 與 ClientSecret 不得為空")
	}
	if ofCfg.TokenURL == "" || ofCfg.BaseURL == "" {
		return nil, fmt.Errorf("OnForm TokenURL 與 BaseURL 不得為空")
	}
	ccCfg := &clientcredentials.Config{
		ClientID:     ofCfg.ClientID,
		ClientSecret: ofCfg.ClientSecret,
		TokenURL:     ofCfg.TokenURL,
	}
	// ccCfg.Client 回傳的 http.Client 會自動帶上並刷新 Bearer token
	httpClient := ccCfg.Client(context.Background())
	httpClient.Timeout = 60 * time.Second
	log.Printf("資訊：[OnForm Client] 初始化成功，來源: %s\n", ofCfg.BaseURL)
	return &Client{baseURL: ofCfg.BaseURL, httpClient: httpClient}, nil
}

// ListRecordings 列出最近的錄影，最多 limit 筆
func (c *Client) ListRecordings(ctx context.Context, limit int) ([]Recording, error) {
	if limit <= 0 {
		limit = 20
	}
	url := fmt.Sprintf("%s/v1/recordings?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("建立錄影列表請求失敗: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("錄影列表請求失敗: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("錄影列表回傳非預期狀態碼 %d: %s", resp.StatusCode, string(respBody))
	}
	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("解析錄影列表回應失敗: %w", err)
	}
	log.Printf("資訊：[OnForm Client] 取得 %d 筆錄影。\n", len(parsed.Recordings))
	return parsed.Recordings, nil
}

// DownloadRecording 下載單筆錄影的影片內容
func (c *Client) DownloadRecording(ctx context.Context, rec Recording) ([]byte, error) {
	if rec.DownloadURL == "" {
		return nil, fmt.Errorf("錄影 %s 缺少下載連結", rec.ID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rec.DownloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("建立錄影下載請求失敗 (%s): %w", rec.ID, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("錄影下載請求失敗 (%s): %w", rec.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("錄影下載回傳非預期狀態碼 %d (%s)", resp.StatusCode, rec.ID)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("讀取錄影內容失敗 (%s): %w", rec.ID, err)
	}
	log.Printf("資訊：[OnForm Client] 錄影 %s 下載完成 (%d bytes)。\n", rec.ID, len(data))
	return data, nil
}
