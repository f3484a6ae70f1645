// services/coach.go - AI Coaching Client (OpenAI chat completions)
package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

const defaultCoachModel = "gpt-4o-mini"

// CoachService calls the OpenAI chat completions API to produce career
// coaching feedback for an achievement. It is optional: without an API key
// the service reports itself unconfigured and the ledger returns
// ErrCoachingUnavailable.
type CoachService struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewCoachService() *CoachService {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultCoachModel
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &CoachService{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (s *CoachService) Configured() bool {
	return s.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Coach sends the achievement title to the model and returns the feedback
// text. Fails with an error when unconfigured or when the remote call does
// not produce a response.
func (s *CoachService) Coach(title string) (string, error) {
	if !s.Configured() {
		return "", errors.New("coach service not configured")
	}

	prompt := fmt.Sprintf(`Please analyze this career achievement: %q.
Provide coaching on:
1. How to reframe it for maximum impact.
2. Specific talking points for performance reviews.
3. How to quantify the impact if possible.
Keep it professional and encouraging.`, title)

	body, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("❌ Coaching request %s failed: %v", requestID, err)
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("invalid response from coach API: %v", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("coach API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("coach API returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("no response from AI")
	}

	return parsed.Choices[0].Message.Content, nil
}
