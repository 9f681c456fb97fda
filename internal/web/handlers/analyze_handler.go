package handlers

import (
	"SwingLab-backend/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// SessionAnalyzer 定義分析觸發器（由 services.AnalyzeService 實現）
type SessionAnalyzer interface {
	AnalyzeSession(ctx context.Context, sessionID string, forceRecompute bool) (*models.AnalysisScores, bool, error)
}

// AnalyzeSessionHandler 處理 POST /api/analyze-session
type AnalyzeSessionHandler struct {
	analyzer SessionAnalyzer
}

// NewAnalyzeSessionHandler 建立一個 AnalyzeSessionHandler
func NewAnalyzeSessionHandler(analyzer SessionAnalyzer) *AnalyzeSessionHandler {
	if analyzer == nil {
		log.Panicln("AnalyzeSessionHandler：SessionAnalyzer 不得為空")
	}
	return &AnalyzeSessionHandler{analyzer: analyzer}
}

type analyzeRequest struct {
	SessionID      string `json:"sessionId"`
	ForceRecompute bool   `json:"forceRecompute"`
}

// ServeHTTP 實現 http.Handler 介面
func (h *AnalyzeSessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: 解析請求內容失敗: %v", models.ErrInvalidArgument, err))
		return
	}

	log.Printf("資訊：[AnalyzeSessionHandler] 收到分析請求：場次 %s (force: %t)\n", req.SessionID, req.ForceRecompute)
	scores, cached, err := h.analyzer.AnalyzeSession(r.Context(), req.SessionID, req.ForceRecompute)
	if err != nil {
		log.Printf("錯誤：[AnalyzeSessionHandler] 分析失敗: %v\n", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cached":  cached,
		"data":    scores,
	})
}
