package localllm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"familyplate/internal/recipe"
)

const extractPrompt = `Extract this recipe as JSON with these fields: title, servings, prepTime, cookTime, ingredientSections, instructions.

CRITICAL for ingredientSections:
- Look carefully for ANY section headers/labels in the ingredients area (e.g., "Ingredients", "Dressing", "Sauce", "Filling", "Crust", "Topping", "For the...", "Marinade", etc.)
- If you see multiple labeled groups (like "INGREDIENTS" followed by "DRESSING"), create separate sections for each with appropriate titles
- Only combine into a single section (with empty title) if there are truly NO section labels at all
- Preserve the exact section names from the recipe

Format:
{
  "title": "Recipe Name",
  "servings": "4",
  "prepTime": "15 minutes",
  "cookTime": "30 minutes",
  "ingredientSections": [
    {"title": "Ingredients", "items": ["item 1", "item 2"]},
    {"title": "Dressing", "items": ["item 1", "item 2"]}
  ],
  "instructions": ["step 1", "step 2"]
}

Return only valid JSON, no markdown or explanation.`

// Client talks to an OpenAI-compatible chat completions endpoint, typically a
// locally hosted multimodal model.
type Client struct {
	http  *resty.Client
	model string
}

// NewClient creates a client for the local LLM at baseURL.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		http:  resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		model: model,
	}
}

// Request is the chat completions request body.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message is one chat message.
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content is one part of a chat message.
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an inline base64 image.
type ImageURL struct {
	URL string `json:"url"`
}

// Response is the chat completions response body.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice is one completion choice.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage is the message within a completion choice.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) generateContent(ctx context.Context, text string, imageData []byte) (string, error) {
	content := []Content{{Type: "text", Text: text}}
	if imageData != nil {
		content = append(content, Content{
			Type: "image_url",
			ImageURL: &ImageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData),
			},
		})
	}

	reqBody := Request{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: content}},
		Temperature: 0.2,
		MaxTokens:   2000,
	}

	var llmResp Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&llmResp).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode())
	}

	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("no content found in response")
	}
	return llmResp.Choices[0].Message.Content, nil
}

// ExtractRecipe extracts structured recipe data from a photographed recipe
// card. format is accepted for interface parity; the image is always sent as
// an inline JPEG data URL.
func (c *Client) ExtractRecipe(ctx context.Context, imageData []byte, format string) (*recipe.Extraction, error) {
	responseText, err := c.generateContent(ctx, extractPrompt, imageData)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	cleanJSON, err := extractJSON(responseText)
	if err != nil {
		return nil, err
	}

	var ext recipe.Extraction
	if err := json.Unmarshal([]byte(cleanJSON), &ext); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction from response: %w", err)
	}

	return &ext, nil
}

// EstimateTimes asks the model to estimate prep and cook times.
func (c *Client) EstimateTimes(ctx context.Context, title, ingredients, instructions string) (*recipe.TimeEstimate, error) {
	promptText := fmt.Sprintf(`Estimate prep and cook times for this recipe. Return ONLY valid JSON with prepTime and cookTime as strings (e.g. "15 minutes").

Recipe: %s
Ingredients: %s
Instructions: %s

Respond with JSON only, no markdown or explanation.`, title, ingredients, instructions)

	responseText, err := c.generateContent(ctx, promptText, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	cleanJSON, err := extractJSON(responseText)
	if err != nil {
		return nil, err
	}

	var est recipe.TimeEstimate
	if err := json.Unmarshal([]byte(cleanJSON), &est); err != nil {
		return nil, fmt.Errorf("failed to unmarshal time estimate from response: %w", err)
	}

	return &est, nil
}

func extractJSON(text string) (string, error) {
	startIndex := strings.Index(text, "{")
	endIndex := strings.LastIndex(text, "}")
	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return "", fmt.Errorf("could not find JSON object in response: %s", text)
	}
	return text[startIndex : endIndex+1], nil
}
