package slack

import (
	"fmt"
	"log"

	slackapi "github.com/slack-go/slack"
)

// slackClient 抽象出我們用到的 Slack API 方法，方便測試時替換
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Client 負責把分析報告發送到教練工作區的 Slack 頻道
type Client struct {
	api       slackClient
	channelID string
}

// NewClient 建立 Slack 客戶端。channelID 是未指定收件頻道時的預設頻道。
func NewClient(botToken string, channelID string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("Slack Bot Token 不得為空")
	}
	if channelID == "" {
		return nil, fmt.Errorf("Slack 預設頻道 ID 不得為空")
	}
	log.Printf("資訊：[Slack Client] 初始化成功，預設頻道: %s\n", channelID)
	return &Client{api: slackapi.New(botToken), channelID: channelID}, nil
}

// newWithAPI 供測試注入 mock 客戶端
func newWithAPI(api slackClient, channelID string) *Client {
	return &Client{api: api, channelID: channelID}
}

// SendMessage 發送純文字訊息。channelID 為空時使用預設頻道。
// 回傳實際發送到的頻道，供發送記錄使用。
func (c *Client) SendMessage(channelID string, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("訊息內文不得為空")
	}
	target := channelID
	if target == "" {
		target = c.channelID
	}
	_, _, err := c.api.PostMessage(target, slackapi.MsgOptionText(text, false))
	if err != nil {
		return target, fmt.Errorf("Slack PostMessage 失敗 (頻道: %s): %w", target, err)
	}
	log.Printf("資訊：[Slack Client] 訊息已發送到頻道 %s。\n", target)
	return target, nil
}
