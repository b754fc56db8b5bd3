package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartskincare/api/internal/config"
)

func analyzeTestService(baseURL string) *RecommendService {
	return NewRecommendService(&config.RecommenderConfig{
		Enabled:   true,
		BaseURL:   baseURL,
		TimeoutMS: 2000,
	}, nil)
}

func TestAnalyzeUploadsMultipartImage(t *testing.T) {
	var gotField bool
	var gotBytes []byte
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("path want /analyze got %s", r.URL.Path)
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"No image uploaded"}`))
			return
		}
		defer file.Close()
		gotField = true
		gotBytes, _ = io.ReadAll(file)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"condition":"Acne","confidence":93.52}`))
	}))
	defer engine.Close()

	svc := analyzeTestService(engine.URL)
	result, err := svc.Analyze(context.Background(), "selfie.jpg", bytes.NewReader([]byte("fake-image-bytes")))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if !gotField {
		t.Fatalf("engine should receive the upload in the image form field")
	}
	if string(gotBytes) != "fake-image-bytes" {
		t.Fatalf("engine should receive the file content, got %q", string(gotBytes))
	}
	if result.Condition != "Acne" {
		t.Errorf("condition want Acne got %s", result.Condition)
	}
	if result.Confidence != 93.52 {
		t.Errorf("confidence want 93.52 got %v", result.Confidence)
	}
}

func TestAnalyzeEngineDisabled(t *testing.T) {
	svc := NewRecommendService(&config.RecommenderConfig{Enabled: false}, nil)

	_, err := svc.Analyze(context.Background(), "selfie.jpg", bytes.NewReader(nil))
	if err != ErrRecommenderDisabled {
		t.Fatalf("want ErrRecommenderDisabled got %v", err)
	}
}

func TestAnalyzeRejectsMalformedVerdict(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"Error processing image"}`))
	}))
	defer engine.Close()

	svc := analyzeTestService(engine.URL)
	_, err := svc.Analyze(context.Background(), "selfie.jpg", bytes.NewReader([]byte("x")))
	if err != ErrRecommenderUnavailable {
		t.Fatalf("want ErrRecommenderUnavailable got %v", err)
	}
}
