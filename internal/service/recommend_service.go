package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"
)

// RecommendService proxies the external recommendation engine. When the
// engine is disabled or unreachable it falls back to matching the
// catalog's skin type tags locally, so the storefront always gets an
// answer.
type RecommendService struct {
	cfg         *config.RecommenderConfig
	productRepo repository.ProductRepository
	httpClient  *http.Client
}

// NewRecommendService builds the recommendation proxy.
func NewRecommendService(cfg *config.RecommenderConfig, productRepo repository.ProductRepository) *RecommendService {
	timeout := 5 * time.Second
	if cfg != nil && cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &RecommendService{
		cfg:         cfg,
		productRepo: productRepo,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// RecommendInput is the member's skin profile.
type RecommendInput struct {
	SkinType string   `json:"skin_type"`
	Concerns []string `json:"concerns,omitempty"`
}

// Recommendation is one suggested product.
type Recommendation struct {
	ProductID uint         `json:"product_id,omitempty"`
	Code      string       `json:"code,omitempty"`
	Name      string       `json:"name"`
	Category  string       `json:"category,omitempty"`
	Price     models.Money `json:"price"`
	ImageURL  string       `json:"image_url,omitempty"`
	Reason    string       `json:"reason,omitempty"`
}

// RecommendResult is the recommendation response with its provenance.
type RecommendResult struct {
	Source          string           `json:"source"` // engine / catalog
	Recommendations []Recommendation `json:"recommendations"`
}

// Recommend returns product suggestions for a skin profile.
func (s *RecommendService) Recommend(ctx context.Context, input RecommendInput) (*RecommendResult, error) {
	input.SkinType = strings.TrimSpace(input.SkinType)
	if input.SkinType == "" {
		return nil, ErrNotFound
	}

	if s.engineEnabled() {
		result, err := s.callEngine(ctx, "/recommend", input)
		if err == nil {
			return result, nil
		}
		logger.Warnw("recommender_call_failed",
			"endpoint", "/recommend",
			"error", err,
		)
	}

	return s.recommendFromCatalog(input.SkinType)
}

// AnalyzeResult is the engine's verdict on an uploaded skin photo.
// Confidence is a percentage.
type AnalyzeResult struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
}

// Analyze uploads a skin photo to the engine's classifier. The engine
// expects multipart form data with the file under "image". There is no
// local fallback; analysis needs the model.
func (s *RecommendService) Analyze(ctx context.Context, filename string, image io.Reader) (*AnalyzeResult, error) {
	if !s.engineEnabled() {
		return nil, ErrRecommenderDisabled
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	payload, err := s.post(ctx, "/analyze", form.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}

	var result AnalyzeResult
	if err := json.Unmarshal(payload, &result); err != nil || result.Condition == "" {
		return nil, ErrRecommenderUnavailable
	}
	return &result, nil
}

func (s *RecommendService) engineEnabled() bool {
	return s.cfg != nil && s.cfg.Enabled && strings.TrimSpace(s.cfg.BaseURL) != ""
}

func (s *RecommendService) callEngine(ctx context.Context, path string, input RecommendInput) (*RecommendResult, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	payload, err := s.post(ctx, path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var recs []Recommendation
	if err := json.Unmarshal(payload, &recs); err != nil {
		// Some engine versions wrap the list.
		var wrapped struct {
			Recommendations []Recommendation `json:"recommendations"`
		}
		if err := json.Unmarshal(payload, &wrapped); err != nil {
			return nil, ErrRecommenderUnavailable
		}
		recs = wrapped.Recommendations
	}
	return &RecommendResult{Source: "engine", Recommendations: recs}, nil
}

func (s *RecommendService) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	url := strings.TrimRight(s.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, ErrRecommenderUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommender returned status %d: %w", resp.StatusCode, ErrRecommenderUnavailable)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// recommendFromCatalog matches active products whose skin type tags
// cover the requested type.
func (s *RecommendService) recommendFromCatalog(skinType string) (*RecommendResult, error) {
	products, _, err := s.productRepo.List(repository.ProductListFilter{
		Page:       1,
		PageSize:   200,
		OnlyActive: true,
	})
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(skinType)
	recs := make([]Recommendation, 0)
	for _, product := range products {
		if !matchesSkinType(product.TargetSkinTypes, want) {
			continue
		}
		recs = append(recs, Recommendation{
			ProductID: product.ID,
			Code:      product.Code,
			Name:      product.Name,
			Category:  product.Category,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			Reason:    fmt.Sprintf("Suited for %s skin", skinType),
		})
	}
	return &RecommendResult{Source: "catalog", Recommendations: recs}, nil
}

func matchesSkinType(tags models.StringArray, want string) bool {
	for _, tag := range tags {
		normalized := strings.ToLower(tag)
		if normalized == want || normalized == "all skin type" {
			return true
		}
	}
	return false
}
