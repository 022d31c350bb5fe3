package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/empezz5-crypto/mdmoney/internal/config"
	"github.com/empezz5-crypto/mdmoney/internal/model"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

const (
	youtubeVideosURL = "https://www.googleapis.com/youtube/v3/videos"
	openaiURL        = "https://api.openai.com/v1/responses"

	systemPrompt = "You are a creative producer for YouTube Shorts. Return ONLY valid JSON."
)

var promptInstructions = []string{
	"Reflect current trends in the topic.",
	"Output in Korean.",
	"Return JSON with fields: topic, subtopic, hook, notes.",
	"Make topic short and punchy (max 40 chars).",
	"Subtopic should be specific and actionable (max 60 chars).",
	"Hook should be a strong opening line (max 60 chars).",
	"Notes can include tone, format, or CTA (max 120 chars).",
}

// Service generates shorts ideas: trending video snippets seed a JSON-mode
// model call. Both upstream calls are plain pass-throughs.
type Service struct {
	cfg        config.AIConfig
	openAIKey  string
	youtubeKey string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewService(cfg config.AIConfig, openAIKey, youtubeKey string, logger zerolog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		openAIKey:  openAIKey,
		youtubeKey: youtubeKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// GenerateIdea produces one shorts idea for the optional keyword, seeded by
// the region's trending videos when the YouTube key is configured.
func (s *Service) GenerateIdea(ctx context.Context, keyword string) (*model.Idea, error) {
	trends, err := s.fetchTrending(ctx)
	if err != nil {
		return nil, err
	}

	idea, err := s.generate(ctx, keyword, trends)
	if err != nil {
		return nil, err
	}
	idea.Trends = trends
	return idea, nil
}

type youtubeResponse struct {
	Items []struct {
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

func (s *Service) fetchTrending(ctx context.Context) ([]model.TrendingVideo, error) {
	if s.youtubeKey == "" {
		return []model.TrendingVideo{}, nil
	}

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("chart", "mostPopular")
	query.Set("regionCode", s.cfg.RegionCode)
	query.Set("maxResults", strconv.Itoa(s.cfg.MaxTrends))
	query.Set("key", s.youtubeKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtubeVideosURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build YouTube request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("YouTube API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("YouTube API error: %d", resp.StatusCode)
	}

	var data youtubeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode YouTube response: %w", err)
	}

	trends := make([]model.TrendingVideo, 0, len(data.Items))
	for _, item := range data.Items {
		trends = append(trends, model.TrendingVideo{
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
		})
	}
	return trends, nil
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model          string          `json:"model"`
	Input          []openaiMessage `json:"input"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float64 `json:"temperature"`
}

type openaiResponse struct {
	OutputText string `json:"output_text"`
}

func (s *Service) generate(ctx context.Context, keyword string, trends []model.TrendingVideo) (*model.Idea, error) {
	if s.openAIKey == "" {
		return nil, apperrors.Unavailable("OPENAI_API_KEY is missing", nil)
	}

	userContent, err := json.Marshal(map[string]interface{}{
		"keyword":      keyword,
		"trends":       trends,
		"instructions": promptInstructions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompt: %w", err)
	}

	reqBody := openaiRequest{
		Model: s.cfg.Model,
		Input: []openaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(userContent)},
		},
		Temperature: 0.7,
	}
	reqBody.ResponseFormat.Type = "json_object"

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAI request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.openAIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("OpenAI error: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode OpenAI response: %w", err)
	}

	var idea model.Idea
	if err := json.Unmarshal([]byte(data.OutputText), &idea); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return &idea, nil
}
