package handlers

import (
	"SwingLab-backend/internal/models"
	"fmt"
	"log"
	"net/http"
)

// SessionHandler 處理 GET /api/session，回傳場次本體與揮棒列表
type SessionHandler struct {
	db DBStore
}

// NewSessionHandler 建立一個 SessionHandler
func NewSessionHandler(db DBStore) *SessionHandler {
	if db == nil {
		log.Panicln("SessionHandler：DBStore 不得為空")
	}
	return &SessionHandler{db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, fmt.Errorf("%w: 缺少查詢參數 sessionId", models.ErrInvalidArgument))
		return
	}
	session, err := h.db.GetSessionByID(sessionID)
	if err != nil {
		log.Printf("錯誤：[SessionHandler] 查詢場次 %s 失敗: %v\n", sessionID, err)
		writeError(w, err)
		return
	}
	if session == nil {
		writeError(w, fmt.Errorf("%w: 場次 %s 不存在", models.ErrNotFound, sessionID))
		return
	}
	swings, err := h.db.GetSwingsBySession(sessionID)
	if err != nil {
		log.Printf("錯誤：[SessionHandler] 查詢場次 %s 的揮棒記錄失敗: %v\n", sessionID, err)
		writeError(w, err)
		return
	}
	if swings == nil {
		swings = []models.Swing{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
		"swings":  swings,
	})
}
