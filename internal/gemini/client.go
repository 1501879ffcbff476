// Package gemini wraps the Gemini API for search query expansion.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/models"
)

// maxTermsPerField bounds how many suggestions per field reach the search index.
const maxTermsPerField = 5

// ClientConfig holds Gemini client configuration.
type ClientConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// Client wraps the Gemini API client.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	config ClientConfig
	log    *logger.Logger
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg ClientConfig, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.ResponseMIMEType = "application/json"

	return &Client{
		client: client,
		model:  model,
		config: cfg,
		log:    log.WithComponent("gemini"),
	}, nil
}

// Close closes the Gemini client.
func (c *Client) Close() error {
	return c.client.Close()
}

// ExpandQuery asks Gemini for keywords, canonical skills and job titles
// related to a free-text job search query.
func (c *Client) ExpandQuery(ctx context.Context, query string) (*models.AIQueryResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(expandPrompt(query)))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	result, err := parseExpansion(extractText(resp.Candidates[0].Content.Parts))
	if err != nil {
		return nil, err
	}

	var in, out int
	if resp.UsageMetadata != nil {
		in, out = int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount)
	}
	c.log.GeminiRequest("expand_query", in, out, time.Since(start))
	return result, nil
}

func expandPrompt(query string) string {
	return fmt.Sprintf(`You help a job board search its listings.
Expand this job search query with closely related search terms.

Query: %q

Return JSON:
{
  "keywords": ["keyword1", "keyword2"],
  "skills": ["skill1", "skill2"],
  "job_titles": ["title1", "title2"]
}

Use lowercase. Return at most %d items per field and an empty array when nothing applies.
Return ONLY valid JSON, no markdown.`, query, maxTermsPerField)
}

func parseExpansion(text string) (*models.AIQueryResult, error) {
	var result models.AIQueryResult
	if err := json.Unmarshal([]byte(cleanJSON(text)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}
	result.Keywords = limitTerms(result.Keywords)
	result.Skills = limitTerms(result.Skills)
	result.JobTitles = limitTerms(result.JobTitles)
	return &result, nil
}

func limitTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
		if len(out) == maxTermsPerField {
			break
		}
	}
	return out
}

func extractText(parts []genai.Part) string {
	var texts []string
	for _, part := range parts {
		if text, ok := part.(genai.Text); ok {
			texts = append(texts, string(text))
		}
	}
	return strings.Join(texts, "")
}

func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
