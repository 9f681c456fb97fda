package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
)

// AdminAuth 以 Bearer token 保護後台路由。
// 未帶 token 回 401，token 不符回 403；預檢請求不需驗證。
func AdminAuth(adminToken string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			log.Printf("警告：[AdminAuth] 請求缺少 Bearer token: %s %s\n", r.Method, r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "缺少授權資訊"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			log.Printf("警告：[AdminAuth] 無效的 token: %s %s\n", r.Method, r.URL.Path)
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "授權無效"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
