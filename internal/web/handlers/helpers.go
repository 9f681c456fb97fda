package handlers

import (
	"SwingLab-backend/internal/models"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// applyCORS 在回應加上跨來源標頭。拍攝端 App 與後台前端
// 都從不同的 origin 呼叫 API，所以全部路由一律放行。
func applyCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// handlePreflight 處理 CORS 預檢請求；回傳 true 表示請求已結束
func handlePreflight(w http.ResponseWriter, r *http.Request) bool {
	applyCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// writeJSON 輸出 JSON 回應
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("錯誤：序列化 JSON 回應失敗: %v", err)
	}
}

// writeError 依錯誤類別對應 HTTP 狀態碼後輸出 {"error": ...}
func writeError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		statusCode = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
	}
	writeJSON(w, statusCode, map[string]string{"error": err.Error()})
}
