package services

import (
	"SwingLab-backend/internal/clients/onform"
	"SwingLab-backend/internal/config"
	"SwingLab-backend/internal/models"
	"context"
	"database/sql"
	"errors"
	"testing"
)

type fakeTagger struct {
	response string
	err      error
}

func (f *fakeTagger) TagDrillTranscript(ctx context.Context, transcript string, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeRecSource struct {
	recordings  []onform.Recording
	listErr     error
	downloadErr map[string]error
}

func (f *fakeRecSource) ListRecordings(ctx context.Context, limit int) ([]onform.Recording, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.recordings, nil
}

func (f *fakeRecSource) DownloadRecording(ctx context.Context, rec onform.Recording) ([]byte, error) {
	if err := f.downloadErr[rec.ID]; err != nil {
		return nil, err
	}
	return []byte("video-bytes-" + rec.ID), nil
}

func drillFixtureConfig() *config.Config {
	return &config.Config{
		Prompts: config.PromptConfig{
			DrillTagging: config.DrillTaggingPrompts{
				CurrentVersion: "v1",
				Versions:       map[string]string{"v1": "tag this transcript"},
			},
		},
	}
}

func drillFixtureStore(video *models.DrillVideo) *fakeStore {
	store := &fakeStore{}
	store.getDrillVideoByIDFunc = func(videoID int64) (*models.DrillVideo, error) {
		if video != nil && video.ID == videoID {
			copied := *video
			return &copied, nil
		}
		return nil, nil
	}
	store.updateDrillVideoFunc = func(v *models.DrillVideo) error {
		*video = *v
		return nil
	}
	store.updateDrillVideoStatusFunc = func(videoID int64, status models.DrillStatus, errorMessage sql.NullString) error {
		video.Status = status
		video.ErrorMessage = errorMessage
		return nil
	}
	return store
}

func draftVideo(id int64) *models.DrillVideo {
	return &models.DrillVideo{
		ID:         id,
		Title:      "Tee Work Basics",
		SourceName: "onform",
		SourceID:   "rec-1",
		Status:     models.DrillStatusDraft,
		Transcript: models.JsonNullString{NullString: sql.NullString{String: "keep your hands inside the ball", Valid: true}},
	}
}

func TestAutoTag_ParsesAnalysisAndAdvances(t *testing.T) {
	video := draftVideo(1)
	store := drillFixtureStore(video)
	tagger := &fakeTagger{response: `{"category":"hitting","problems_addressed":["casting"],"tags":["tee","hands"],"skill_level":"beginner","summary":"Tee drill for inside hands."}`}
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), tagger, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	result, err := svc.AutoTag(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("AutoTag failed: %v", err)
	}
	if result.Status != models.DrillStatusReadyForReview {
		t.Errorf("status = %s, want ready_for_review", result.Status)
	}
	if result.Category.String != "hitting" {
		t.Errorf("category = %q, want hitting", result.Category.String)
	}
	if string(result.Tags) != `["tee","hands"]` {
		t.Errorf("tags = %s, want [\"tee\",\"hands\"]", result.Tags)
	}
	if result.SkillLevel.String != "beginner" {
		t.Errorf("skillLevel = %q, want beginner", result.SkillLevel.String)
	}
}

func TestAutoTag_AutoPublish(t *testing.T) {
	video := draftVideo(1)
	store := drillFixtureStore(video)
	tagger := &fakeTagger{response: `{"category":"hitting","tags":[],"problems_addressed":[],"skill_level":"advanced","summary":"x"}`}
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), tagger, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	result, err := svc.AutoTag(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("AutoTag failed: %v", err)
	}
	if result.Status != models.DrillStatusPublished {
		t.Errorf("status = %s, want published", result.Status)
	}
	if !result.PublishedAt.Valid {
		t.Error("published video missing published_at")
	}
}

func TestAutoTag_BadJSONMarksProcessingFailed(t *testing.T) {
	video := draftVideo(1)
	store := drillFixtureStore(video)
	tagger := &fakeTagger{response: "this is not json"}
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), tagger, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	_, err = svc.AutoTag(context.Background(), 1, false)
	if !errors.Is(err, models.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if video.Status != models.DrillStatusProcessingFailed {
		t.Errorf("status = %s, want processing_failed", video.Status)
	}
	if !video.ErrorMessage.Valid {
		t.Error("processing_failed video missing error message")
	}
}

func TestAutoTag_UpstreamFailureMarksProcessingFailed(t *testing.T) {
	video := draftVideo(1)
	store := drillFixtureStore(video)
	tagger := &fakeTagger{err: errors.New("model overloaded")}
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), tagger, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	_, err = svc.AutoTag(context.Background(), 1, false)
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if video.Status != models.DrillStatusProcessingFailed {
		t.Errorf("status = %s, want processing_failed", video.Status)
	}
}

func TestAutoTag_RejectsPublishedVideo(t *testing.T) {
	video := draftVideo(1)
	video.Status = models.DrillStatusPublished
	store := drillFixtureStore(video)
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), &fakeTagger{response: `{"category":"hitting"}`}, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	if _, err := svc.AutoTag(context.Background(), 1, false); !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument for published video", err)
	}
	if video.Status != models.DrillStatusPublished {
		t.Errorf("status = %s, want published left untouched", video.Status)
	}
}

func TestAutoTag_RejectsReadyForReviewVideo(t *testing.T) {
	video := draftVideo(1)
	video.Status = models.DrillStatusReadyForReview
	store := drillFixtureStore(video)
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), &fakeTagger{response: `{"category":"hitting"}`}, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	if _, err := svc.AutoTag(context.Background(), 1, false); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument for ready_for_review video", err)
	}
}

func TestAutoTag_AllowsRetryFromProcessingFailed(t *testing.T) {
	video := draftVideo(1)
	video.Status = models.DrillStatusProcessingFailed
	video.ErrorMessage = sql.NullString{String: "model overloaded", Valid: true}
	store := drillFixtureStore(video)
	tagger := &fakeTagger{response: `{"category":"hitting","tags":[],"problems_addressed":[],"skill_level":"beginner","summary":"retry"}`}
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), tagger, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	result, err := svc.AutoTag(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("AutoTag retry failed: %v", err)
	}
	if result.Status != models.DrillStatusReadyForReview {
		t.Errorf("status = %s, want ready_for_review after retry", result.Status)
	}
	if result.ErrorMessage.Valid {
		t.Errorf("error message = %q, want cleared after retry", result.ErrorMessage.String)
	}
}

func TestAutoTag_RequiresTranscript(t *testing.T) {
	video := draftVideo(1)
	video.Transcript = models.JsonNullString{}
	store := drillFixtureStore(video)
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), &fakeTagger{}, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	if _, err := svc.AutoTag(context.Background(), 1, false); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestAttachTranscript_AdvancesProcessingToDraft(t *testing.T) {
	video := &models.DrillVideo{ID: 2, Status: models.DrillStatusProcessing, SourceName: "onform", SourceID: "rec-2"}
	store := drillFixtureStore(video)
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), &fakeTagger{}, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	result, err := svc.AttachTranscript(2, "today we work on load timing")
	if err != nil {
		t.Fatalf("AttachTranscript failed: %v", err)
	}
	if result.Status != models.DrillStatusDraft {
		t.Errorf("status = %s, want draft", result.Status)
	}
	if !result.Transcript.Valid || result.Transcript.String == "" {
		t.Error("transcript not attached")
	}
}

func TestImportRecordings_AggregatesPerItemResults(t *testing.T) {
	store := &fakeStore{}
	nextID := int64(100)
	store.findOrCreateDrillVideoFunc = func(video *models.DrillVideo) (int64, error) {
		nextID++
		return nextID, nil
	}
	source := &fakeRecSource{
		recordings: []onform.Recording{
			{ID: "rec-1", Title: "Drill A", DownloadURL: "https://example.com/a"},
			{ID: "rec-2", Title: "Drill B", DownloadURL: "https://example.com/b"},
			{ID: "rec-3", Title: "Drill C", DownloadURL: "https://example.com/c"},
		},
		downloadErr: map[string]error{"rec-2": errors.New("download timeout")},
	}
	media := newFakeMedia()
	svc, err := NewDrillService(drillFixtureConfig(), store, media, &fakeTagger{}, source)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	summary, err := svc.ImportRecordings(context.Background(), 10)
	if err != nil {
		t.Fatalf("ImportRecordings failed: %v", err)
	}
	if summary.Total != 3 || summary.Imported != 2 || summary.Failed != 1 {
		t.Errorf("summary = %d/%d/%d (total/imported/failed), want 3/2/1", summary.Total, summary.Imported, summary.Failed)
	}
	if len(summary.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(summary.Items))
	}
	if summary.Items[1].Error == "" || summary.Items[1].Imported {
		t.Errorf("rec-2 item = %+v, want failure with error message", summary.Items[1])
	}
	if len(media.saved) != 2 {
		t.Errorf("stored videos = %d, want 2", len(media.saved))
	}
}

func TestImportRecordings_NoSourceConfigured(t *testing.T) {
	svc, err := NewDrillService(drillFixtureConfig(), &fakeStore{}, newFakeMedia(), &fakeTagger{}, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}
	if _, err := svc.ImportRecordings(context.Background(), 10); !errors.Is(err, models.ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}

func TestUpdateVideo_RejectsBackwardTransition(t *testing.T) {
	video := draftVideo(1)
	video.Status = models.DrillStatusPublished
	store := drillFixtureStore(video)
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), &fakeTagger{}, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	update := *video
	update.Status = models.DrillStatusDraft
	if _, err := svc.UpdateVideo(&update); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument for published → draft", err)
	}
}

func TestUpdateVideo_AllowsForwardTransition(t *testing.T) {
	video := draftVideo(1)
	video.Status = models.DrillStatusReadyForReview
	store := drillFixtureStore(video)
	svc, err := NewDrillService(drillFixtureConfig(), store, newFakeMedia(), &fakeTagger{}, nil)
	if err != nil {
		t.Fatalf("NewDrillService failed: %v", err)
	}

	update := *video
	update.Status = models.DrillStatusPublished
	result, err := svc.UpdateVideo(&update)
	if err != nil {
		t.Fatalf("UpdateVideo failed: %v", err)
	}
	if result.Status != models.DrillStatusPublished {
		t.Errorf("status = %s, want published", result.Status)
	}
	if !result.PublishedAt.Valid {
		t.Error("published video missing published_at")
	}
}
