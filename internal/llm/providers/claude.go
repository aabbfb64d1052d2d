package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"jobtailor/internal/config"
	"jobtailor/internal/logging"
	"jobtailor/pkg/models"
)

// ClaudeProvider implements requirement extraction and bullet rewriting
// using Anthropic's Claude.
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger *zap.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeProvider{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// ExtractRequirements analyzes a raw job description and returns the
// structured requirements, validated at the boundary before anything
// downstream sees them.
func (cp *ClaudeProvider) ExtractRequirements(ctx context.Context, title, company, description string) (*models.ExtractedRequirements, error) {
	startTime := time.Now()

	if len(strings.TrimSpace(description)) < 50 {
		return nil, fmt.Errorf("description too short to analyze (%d chars)", len(description))
	}

	// Rough estimation: 3 chars per token
	maxContentLength := cp.config.LLM.MaxTokens * 3
	if len(description) > maxContentLength {
		description = description[:maxContentLength] + "..."
		cp.logger.Debug("description truncated to fit token limits",
			zap.String("title", title),
			zap.String("company", company),
		)
	}

	prompt := cp.buildExtractionPrompt(title, company, description)

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(cp.config.LLM.MaxTokens),
		Temperature: anthropic.Float(float64(cp.config.LLM.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API call failed: %w", err)
	}

	reqs, err := ParseExtractionResponse(responseText(response))
	if err != nil {
		return nil, fmt.Errorf("parse claude response: %w", err)
	}

	cp.logger.Info("requirements extracted",
		zap.String("title", title),
		zap.String("company", company),
		zap.Int("hard_skills", len(reqs.HardSkills)),
		zap.Float64("fit_score", reqs.FitScore),
		zap.Duration("processing_time", time.Since(startTime)),
	)

	return reqs, nil
}

// RewriteBullet nudges one experience bullet towards the job's requirements.
// The rewrite is accepted only when it stays close to the original length,
// so a rambling or truncated completion falls back to the original text.
func (cp *ClaudeProvider) RewriteBullet(ctx context.Context, bullet string, reqs *models.ExtractedRequirements) (string, error) {
	if reqs == nil || len(reqs.HardSkills) == 0 {
		return bullet, nil
	}

	prompt := cp.buildRewritePrompt(bullet, reqs)

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   1024,
		Temperature: anthropic.Float(float64(cp.config.LLM.RewriteTemperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	rewritten := strings.Trim(strings.TrimSpace(responseText(response)), `"'`)
	if len(rewritten) <= 20 || len(rewritten) >= len(bullet)*3 {
		cp.logger.Debug("rewrite rejected by length check",
			zap.Int("original_len", len(bullet)),
			zap.Int("rewritten_len", len(rewritten)),
		)
		return bullet, nil
	}

	return rewritten, nil
}

// GetProviderName returns the name of the LLM provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}

func (cp *ClaudeProvider) buildExtractionPrompt(title, company, description string) string {
	return fmt.Sprintf(`You are a technical recruiting analyst. Extract structured information from the job description below and return it as a JSON object.

Candidate background (for the fit_score estimate only):
%s

Return a valid JSON object with exactly these fields:

{
  "hard_skills": ["array of strings - technical skills, tools, languages required"],
  "soft_skills": ["array of strings - communication, teamwork and similar skills"],
  "experience_years": number or null - required years of experience (null if not stated),
  "job_type": "one of: internship, full_time, part_time, contract, unknown",
  "is_remote": boolean - whether remote work is possible,
  "domain": "string - the company or role domain, e.g. 'AI/ML', 'fintech'",
  "special_instructions": "string - application instructions stated in the posting, empty if none",
  "fit_score": number between 0 and 1 - rough match against the candidate background
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. If information is not found, use empty string "" for strings, empty array [] for arrays, and null for experience_years
3. Keep skill names short (a tool or technology name, not a sentence)
4. If the content doesn't appear to be a job posting, return the structure with empty values and fit_score 0

JOB: %s at %s

DESCRIPTION:
%s`, cp.candidateSummary(), title, company, description)
}

// candidateSummary condenses the profile facts the fit score is judged
// against. Kept in the prompt rather than config so one provider call stays
// self-contained.
func (cp *ClaudeProvider) candidateSummary() string {
	return "- Graduate student looking for internships and entry-level roles\n" +
		"- Core stack listed in the attached profile; favors backend, data and ML work"
}

func (cp *ClaudeProvider) buildRewritePrompt(bullet string, reqs *models.ExtractedRequirements) string {
	return fmt.Sprintf(`You are a professional resume writer. Adjust the following resume bullet point so it better matches the target job's requirements.

Rules:
1. Keep the core facts unchanged; never invent skills or experience
2. Only adjust wording and emphasis
3. Keep a professional English resume style, starting with an action verb
4. Preserve concrete numbers and metrics

Target job skills: %s
Original: %s

Output only the adjusted bullet point, with no explanation.`,
		strings.Join(reqs.HardSkills, ", "), bullet)
}

func responseText(response *anthropic.Message) string {
	if response == nil || len(response.Content) == 0 {
		return ""
	}
	for _, content := range response.Content {
		textContent := content.AsText()
		if textContent.Text != "" {
			return textContent.Text
		}
	}
	return ""
}
