package models

import (
	"database/sql"
	"time"
)

// MessageChannel 定義通知發送的通道
type MessageChannel string

const (
	ChannelSMS  MessageChannel = "sms"  // 簡訊閘道
	ChannelChat MessageChannel = "chat" // Slack 頻道
)

// ScheduledMessageStatus 定義延遲簡訊的狀態
type ScheduledMessageStatus string

const (
	ScheduledPending ScheduledMessageStatus = "pending" // 等待發送
	ScheduledSending ScheduledMessageStatus = "sending" // 已搶占，發送中
	ScheduledSent    ScheduledMessageStatus = "sent"    // 已發送
	ScheduledFailed  ScheduledMessageStatus = "failed"  // 發送失敗
)

// ScheduledMessage 對應 scheduled_messages 資料表。
// 由排程佇列寫入，到期後由排程器的發送任務取出處理。
type ScheduledMessage struct {
	ID           int64                  `json:"id"`
	SessionID    string                 `json:"session_id"`
	TriggerName  string                 `json:"trigger_name"`
	SendAt       time.Time              `json:"send_at"`
	Status       ScheduledMessageStatus `json:"status"`
	ErrorMessage sql.NullString         `json:"error_message"`
	CreatedAt    time.Time              `json:"created_at"`
	SentAt       sql.NullTime           `json:"sent_at"`
}

// MessageTemplate 對應 message_templates 資料表，
// 提供各 trigger 的預設延遲分鐘數與簡訊內文。
type MessageTemplate struct {
	TriggerName  string `json:"trigger_name"`
	DelayMinutes int    `json:"delay_minutes"`
	Body         string `json:"body"`
}

// MessageLog 對應 message_logs 資料表，記錄每一次對外發送（成功或失敗）。
type MessageLog struct {
	ID           int64          `json:"id"`
	SessionID    sql.NullString `json:"session_id"`
	Channel      MessageChannel `json:"channel"`
	Recipient    string         `json:"recipient"`
	Body         string         `json:"body"`
	Success      bool           `json:"success"`
	ErrorMessage sql.NullString `json:"error_message"`
	CreatedAt    time.Time      `json:"created_at"`
}
