package services

import (
	"SwingLab-backend/internal/models"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func newUploadFixture(swingsRequired int) (*UploadService, *fakeStore, *fakeMedia) {
	store := &fakeStore{}
	uploadedCount := 0
	store.getSessionByIDFunc = func(sessionID string) (*models.Session, error) {
		if sessionID != "sess-1" {
			return nil, nil
		}
		return &models.Session{ID: "sess-1", PlayerID: 7, SwingsRequired: swingsRequired, Status: models.SessionStatusUploading}, nil
	}
	seen := map[int]bool{}
	store.upsertSwingTxFunc = func(swing *models.Swing, required int) (int, error) {
		if !seen[swing.SwingIndex] {
			seen[swing.SwingIndex] = true
			uploadedCount++
		}
		return uploadedCount, nil
	}
	media := newFakeMedia()
	svc, err := NewUploadService(store, media, "http://localhost:8080")
	if err != nil {
		panic(err)
	}
	return svc, store, media
}

func TestUploadSwing_CountsAndReadyFlag(t *testing.T) {
	svc, _, _ := newUploadFixture(3)

	for i := 0; i < 3; i++ {
		result, err := svc.UploadSwing("sess-1", i, fmt.Sprintf("swing%d.mp4", i), []byte("video-bytes"))
		if err != nil {
			t.Fatalf("upload %d failed: %v", i, err)
		}
		wantReady := i == 2
		if result.ReadyForPayment != wantReady {
			t.Errorf("upload %d: readyForPayment = %t, want %t", i, result.ReadyForPayment, wantReady)
		}
		if result.SwingsUploaded != i+1 {
			t.Errorf("upload %d: swingsUploaded = %d, want %d", i, result.SwingsUploaded, i+1)
		}
		if result.SwingsRequired != 3 {
			t.Errorf("upload %d: swingsRequired = %d, want 3", i, result.SwingsRequired)
		}
	}
}

func TestUploadSwing_ReuploadOverwritesSameKey(t *testing.T) {
	svc, _, media := newUploadFixture(3)

	if _, err := svc.UploadSwing("sess-1", 0, "first.mp4", []byte("v1")); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	result, err := svc.UploadSwing("sess-1", 0, "second.mp4", []byte("v2"))
	if err != nil {
		t.Fatalf("re-upload failed: %v", err)
	}
	if result.SwingsUploaded != 1 {
		t.Errorf("swingsUploaded after re-upload = %d, want 1", result.SwingsUploaded)
	}
	if len(media.saved) != 1 {
		t.Errorf("stored files = %d, want 1 (same key overwritten)", len(media.saved))
	}
	for key, data := range media.saved {
		if string(data) != "v2" {
			t.Errorf("stored content for %s = %q, want %q", key, data, "v2")
		}
	}
}

func TestUploadSwing_IndexOutOfRange(t *testing.T) {
	svc, _, media := newUploadFixture(3)

	for _, idx := range []int{-1, 3, 10} {
		_, err := svc.UploadSwing("sess-1", idx, "swing.mp4", []byte("v"))
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("index %d: err = %v, want ErrInvalidArgument", idx, err)
		}
	}
	if len(media.saved) != 0 {
		t.Errorf("stored files = %d, want 0 after rejected uploads", len(media.saved))
	}
}

func TestUploadSwing_UnknownSession(t *testing.T) {
	svc, _, _ := newUploadFixture(3)

	_, err := svc.UploadSwing("nope", 0, "swing.mp4", []byte("v"))
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUploadSwing_EmptyInput(t *testing.T) {
	svc, _, _ := newUploadFixture(3)

	if _, err := svc.UploadSwing("", 0, "swing.mp4", []byte("v")); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("empty session: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := svc.UploadSwing("sess-1", 0, "swing.mp4", nil); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("empty data: err = %v, want ErrInvalidArgument", err)
	}
}

func TestUploadSwing_StorageFailure(t *testing.T) {
	svc, _, media := newUploadFixture(3)
	media.saveErr = errors.New("disk full")

	_, err := svc.UploadSwing("sess-1", 0, "swing.mp4", []byte("v"))
	if !errors.Is(err, models.ErrStorage) {
		t.Errorf("err = %v, want ErrStorage", err)
	}
}

func TestUploadSwing_VideoURLUsesPublicBase(t *testing.T) {
	svc, _, _ := newUploadFixture(3)

	result, err := svc.UploadSwing("sess-1", 1, "swing.mov", []byte("v"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasPrefix(result.VideoURL, "http://localhost:8080/media/") {
		t.Errorf("videoUrl = %q, want prefix http://localhost:8080/media/", result.VideoURL)
	}
	if !strings.Contains(result.VideoURL, "swing_01.mov") {
		t.Errorf("videoUrl = %q, want deterministic swing_01.mov key", result.VideoURL)
	}
}
