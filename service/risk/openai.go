package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mevlab/dexsim/service/mempool"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"

	systemPrompt = "You are an expert financial risk analyst specialized in blockchain transactions. " +
		"You have extensive experience in analyzing transaction patterns, liquidity movements, " +
		"and trading behaviors in cryptocurrency markets. You understand that high sell volumes, " +
		"abnormal trading patterns, and sudden liquidity changes can indicate higher risk. " +
		"Your task is to carefully evaluate the provided transaction data and determine an overall risk score."

	instructionPrompt = "Analyze the following blockchain transaction data and determine the overall risk associated with the token. " +
		"Consider factors such as the total volume of transactions, the proportion of sell transactions relative to buy transactions, " +
		"any irregularities or abnormal patterns in the data, and liquidity movements if present. " +
		"A lot of large size volatile buys and sells in a short period of time relative to the total volume can indicate a potential rug pull. " +
		"Based on your analysis, assign a risk score between 0 and 100 (where 0 means extremely low risk and 100 means extremely high risk). " +
		"Also, provide a concise risk level categorization ('Low', 'Medium', or 'High') and a brief explanation of your reasoning. " +
		"Return a JSON object with exactly three keys: 'risk_score', 'risk_level', and 'explanation'. " +
		"Do not include any extra text or commentary.\n\nTransaction data: "
)

// OpenAIScorer scores transactions with an OpenAI chat-completions call.
type OpenAIScorer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIScorer creates a scorer for the chat-completions API. Empty
// baseURL and model get the OpenAI defaults; baseURL is overridable for
// tests and proxies.
func NewOpenAIScorer(baseURL, apiKey, model string, logger *slog.Logger) *OpenAIScorer {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAIScorer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Score serializes the transactions into the analyst prompt and parses the
// model's JSON verdict. Every failure path returns an error; the caller is
// responsible for degrading to Fallback().
func (s *OpenAIScorer) Score(ctx context.Context, txs []mempool.Transaction) (*Assessment, error) {
	txData, err := json.Marshal(txs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transactions: %w", err)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: instructionPrompt + string(txData)},
		},
		Temperature: 0,
		MaxTokens:   4000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	assessment, err := parseAssessment(chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("risk analysis complete",
		"risk_score", assessment.RiskScore,
		"risk_level", assessment.RiskLevel,
		"transactions", len(txs),
	)
	return assessment, nil
}

// parseAssessment decodes the model's verdict, tolerating markdown code
// fences around the JSON object.
func parseAssessment(content string) (*Assessment, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var a Assessment
	if err := json.Unmarshal([]byte(content), &a); err != nil {
		return nil, fmt.Errorf("failed to parse assessment: %w", err)
	}
	return &a, nil
}
