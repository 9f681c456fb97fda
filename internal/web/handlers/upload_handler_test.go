package handlers

import (
	"SwingLab-backend/internal/models"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubUploader struct {
	lastSessionID string
	lastIndex     int
	lastFileName  string
	lastData      []byte
	result        *models.UploadResult
	err           error
}

func (s *stubUploader) UploadSwing(sessionID string, swingIndex int, fileName string, data []byte) (*models.UploadResult, error) {
	s.lastSessionID = sessionID
	s.lastIndex = swingIndex
	s.lastFileName = fileName
	s.lastData = data
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func multipartUpload(t *testing.T, sessionID, swingIndex, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("sessionId", sessionID); err != nil {
		t.Fatalf("write sessionId field: %v", err)
	}
	if err := writer.WriteField("swingIndex", swingIndex); err != nil {
		t.Fatalf("write swingIndex field: %v", err)
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadSwingHandler_Success(t *testing.T) {
	uploader := &stubUploader{result: &models.UploadResult{
		SwingIndex:      1,
		SwingsUploaded:  2,
		SwingsRequired:  3,
		ReadyForPayment: false,
		VideoURL:        "http://localhost:8080/media/sessions/sess-1/swing_01.mp4",
	}}
	handler := NewUploadSwingHandler(uploader)

	body, contentType := multipartUpload(t, "sess-1", "1", "swing.mp4", []byte("video-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload-swing", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if uploader.lastSessionID != "sess-1" || uploader.lastIndex != 1 {
		t.Errorf("uploader called with (%s, %d), want (sess-1, 1)", uploader.lastSessionID, uploader.lastIndex)
	}
	if string(uploader.lastData) != "video-bytes" {
		t.Errorf("uploaded data = %q, want video-bytes", uploader.lastData)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	if resp["swingsUploaded"] != float64(2) {
		t.Errorf("swingsUploaded = %v, want 2", resp["swingsUploaded"])
	}
}

func TestUploadSwingHandler_BadSwingIndex(t *testing.T) {
	handler := NewUploadSwingHandler(&stubUploader{})

	body, contentType := multipartUpload(t, "sess-1", "not-a-number", "swing.mp4", []byte("v"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload-swing", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadSwingHandler_ServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad index", models.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%w: no session", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: disk", models.ErrStorage), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		handler := NewUploadSwingHandler(&stubUploader{err: tc.err})
		body, contentType := multipartUpload(t, "sess-1", "0", "swing.mp4", []byte("v"))
		req := httptest.NewRequest(http.MethodPost, "/api/upload-swing", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Errorf("err %v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestUploadSwingHandler_PreflightCORS(t *testing.T) {
	handler := NewUploadSwingHandler(&stubUploader{})

	req := httptest.NewRequest(http.MethodOptions, "/api/upload-swing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("OPTIONS body = %q, want empty", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("missing Access-Control-Allow-Methods header")
	}
}

func TestUploadSwingHandler_RejectsGet(t *testing.T) {
	handler := NewUploadSwingHandler(&stubUploader{})
	req := httptest.NewRequest(http.MethodGet, "/api/upload-swing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}
}
