package public

import (
	"errors"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

// RecommendRequest asks for product suggestions.
type RecommendRequest struct {
	SkinType string   `json:"skin_type" binding:"required"`
	Concerns []string `json:"concerns"`
}

// Recommend returns product suggestions for a skin profile. When the
// recommendation engine is unreachable the catalog fallback answers.
func (h *Handler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	result, err := h.RecommendService.Recommend(c.Request.Context(), service.RecommendInput{
		SkinType: req.SkinType,
		Concerns: req.Concerns,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeBadRequest, "Skin type is required", nil)
		default:
			respondError(c, response.CodeInternal, "Recommendation failed", err)
		}
		return
	}

	response.Success(c, result)
}

// AnalyzeSkin forwards an uploaded skin photo to the analysis engine.
// The file rides in the multipart "image" field.
func (h *Handler) AnalyzeSkin(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, response.CodeBadRequest, "An image file is required", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, response.CodeBadRequest, "An image file is required", err)
		return
	}
	defer file.Close()

	result, err := h.RecommendService.Analyze(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecommenderDisabled):
			respondError(c, response.CodeBadRequest, "Skin analysis is not enabled", nil)
		case errors.Is(err, service.ErrRecommenderUnavailable):
			respondError(c, response.CodeInternal, "Skin analysis is temporarily unavailable", err)
		default:
			respondError(c, response.CodeInternal, "Skin analysis failed", err)
		}
		return
	}

	response.Success(c, result)
}
