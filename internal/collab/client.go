package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
)

// API paths on the collaborator service.
const (
	PathOCR            = "/api/ocr"
	PathReview         = "/api/review"
	PathGenerateLetter = "/api/generate_letter"
)

// OCRResult is the merged text for a whole batch.
type OCRResult struct {
	Text   string
	IsMock bool // the service answered with placeholder text
}

// TextRecognizer turns ordered pages into one merged text.
type TextRecognizer interface {
	Recognize(ctx context.Context, files []entity.EncodedPage) (OCRResult, error)
}

// RiskReviewer assesses contract text clause by clause.
type RiskReviewer interface {
	Review(ctx context.Context, text string) (entity.AnalysisResult, error)
}

// LetterDrafter writes a dispute letter.
type LetterDrafter interface {
	DraftLetter(ctx context.Context, req entity.LetterRequest) (string, error)
}

// Config for the collaborator client.
type Config struct {
	BaseURL string            // e.g. http://localhost:8000
	Timeout time.Duration     // http client timeout
	Headers map[string]string // extra request headers
}

// Client talks JSON over HTTP to the OCR, review and letter services.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger

	ocrSchema    *jsonschema.Schema
	reviewSchema *jsonschema.Schema
	letterSchema *jsonschema.Schema
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = common.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = common.DefaultTimeout
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}

	var err error
	if c.ocrSchema, err = compileSchema("ocr_response.json", ocrResponseSchema()); err != nil {
		return nil, err
	}
	if c.reviewSchema, err = compileSchema("review_response.json", reviewResponseSchema()); err != nil {
		return nil, err
	}
	if c.letterSchema, err = compileSchema("letter_response.json", letterResponseSchema()); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

type ocrRequest struct {
	Files []entity.EncodedPage `json:"files"`
}

type ocrResponse struct {
	Text   string `json:"text"`
	IsMock bool   `json:"is_mock"`
}

// Recognize sends the full ordered page list in a single request.
func (c *Client) Recognize(ctx context.Context, files []entity.EncodedPage) (OCRResult, error) {
	ctx = common.WithStage(ctx, "ocr")
	raw, _, err := SendJSON(ctx, c.http, c.endpoint(PathOCR), ocrRequest{Files: files}, c.cfg.Headers, c.logger)
	if err != nil {
		return OCRResult{}, err
	}
	if err := validateJSON(c.ocrSchema, raw); err != nil {
		c.logger.Error("collab.ocr.schema_validation_failed", "error", err, "raw_bytes", len(raw))
		return OCRResult{}, err
	}
	var out ocrResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return OCRResult{}, fmt.Errorf("%w: unmarshal ocr reply: %w", ErrResponseInvalid, err)
	}
	c.logger.Info("collab.ocr.ok", "pages", len(files), "text_len", len(out.Text), "is_mock", out.IsMock)
	return OCRResult{Text: out.Text, IsMock: out.IsMock}, nil
}

type reviewRequest struct {
	Text string `json:"text"`
}

type reviewClause struct {
	OriginalText string `json:"original_text"`
	RiskLevel    string `json:"risk_level"`
	RiskReason   string `json:"risk_reason"`
	Suggestion   string `json:"suggestion"`
}

type reviewResponse struct {
	RiskClauses  []reviewClause `json:"risk_clauses"`
	ActionAdvice string         `json:"action_advice"`
}

// Review submits contract text and returns clauses in the order received.
func (c *Client) Review(ctx context.Context, text string) (entity.AnalysisResult, error) {
	ctx = common.WithStage(ctx, "review")
	start := time.Now()
	raw, _, err := SendJSON(ctx, c.http, c.endpoint(PathReview), reviewRequest{Text: text}, c.cfg.Headers, c.logger)
	if err != nil {
		return entity.AnalysisResult{}, err
	}

	normalized, _, err := NormalizeReviewJSON(raw, c.logger)
	if err != nil {
		c.logger.Error("collab.review.normalize_failed", "error", err, "raw_bytes", len(raw))
		return entity.AnalysisResult{}, err
	}
	if err := validateJSON(c.reviewSchema, normalized); err != nil {
		c.logger.Error("collab.review.schema_validation_failed", "error", err, "raw_bytes", len(raw))
		return entity.AnalysisResult{}, err
	}

	var resp reviewResponse
	if err := json.Unmarshal(normalized, &resp); err != nil {
		return entity.AnalysisResult{}, fmt.Errorf("%w: unmarshal review reply: %w", ErrResponseInvalid, err)
	}

	out := entity.AnalysisResult{
		RiskClauses:  make([]entity.RiskClause, 0, len(resp.RiskClauses)),
		ActionAdvice: resp.ActionAdvice,
	}
	for i, rc := range resp.RiskClauses {
		lvl, ok := constants.CanonicalizeRisk(rc.RiskLevel)
		if !ok {
			c.logger.Warn("collab.review.unknown_risk_level", "index", i, "label", rc.RiskLevel, "fallback", string(lvl))
		}
		out.RiskClauses = append(out.RiskClauses, entity.RiskClause{
			OriginalText: rc.OriginalText,
			RiskLevel:    lvl,
			RawLevel:     rc.RiskLevel,
			RiskReason:   rc.RiskReason,
			Suggestion:   rc.Suggestion,
		})
	}

	c.logger.Info("collab.review.ok",
		"clauses", len(out.RiskClauses),
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

type letterRequest struct {
	DisputeType string `json:"dispute_type"`
	Context     string `json:"context"`
}

type letterResponse struct {
	LetterContent string `json:"letter_content"`
}

// DraftLetter asks the drafting service for a letter and returns its content.
func (c *Client) DraftLetter(ctx context.Context, req entity.LetterRequest) (string, error) {
	ctx = common.WithStage(ctx, "letter")
	body := letterRequest{DisputeType: string(req.DisputeType), Context: req.Context}
	raw, _, err := SendJSON(ctx, c.http, c.endpoint(PathGenerateLetter), body, c.cfg.Headers, c.logger)
	if err != nil {
		return "", err
	}
	if err := validateJSON(c.letterSchema, raw); err != nil {
		c.logger.Error("collab.letter.schema_validation_failed", "error", err, "raw_bytes", len(raw))
		return "", err
	}
	var out letterResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: unmarshal letter reply: %w", ErrResponseInvalid, err)
	}
	c.logger.Info("collab.letter.ok", "dispute_type", string(req.DisputeType), "letter_len", len(out.LetterContent))
	return out.LetterContent, nil
}
