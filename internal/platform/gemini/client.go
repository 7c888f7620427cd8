package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"familyplate/internal/recipe"
)

// extractPrompt asks the model for the structured recipe shape. Section
// labels on the card (e.g. "DRESSING") must come back as separate sections.
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

// Client is a client for the Gemini API.
type Client struct {
	model *genai.GenerativeModel
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{model: client.GenerativeModel(modelName)}, nil
}

// ExtractRecipe extracts structured recipe data from a photographed recipe
// card. format is the image format as understood by Gemini ("jpeg", "png").
func (c *Client) ExtractRecipe(ctx context.Context, imageData []byte, format string) (*recipe.Extraction, error) {
	prompt := []genai.Part{
		genai.ImageData(format, imageData),
		genai.Text(extractPrompt),
	}

	resp, err := c.model.GenerateContent(ctx, prompt...)
	if err != nil {
		return nil, err
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	cleanJSON, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var ext recipe.Extraction
	if err := json.Unmarshal([]byte(cleanJSON), &ext); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction JSON: %w. Raw response: %s", err, cleanJSON)
	}

	return &ext, nil
}

// EstimateTimes asks the model to estimate prep and cook times for a recipe
// whose card did not state them.
func (c *Client) EstimateTimes(ctx context.Context, title, ingredients, instructions string) (*recipe.TimeEstimate, error) {
	promptText := fmt.Sprintf(`Estimate prep and cook times for this recipe. Return ONLY valid JSON with prepTime and cookTime as strings (e.g. "15 minutes").

Recipe: %s
Ingredients: %s
Instructions: %s

Respond with JSON only, no markdown or explanation.`, title, ingredients, instructions)

	resp, err := c.model.GenerateContent(ctx, genai.Text(promptText))
	if err != nil {
		return nil, err
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	cleanJSON, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var est recipe.TimeEstimate
	if err := json.Unmarshal([]byte(cleanJSON), &est); err != nil {
		return nil, fmt.Errorf("failed to unmarshal time estimate JSON: %w", err)
	}

	return &est, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return string(text), nil
}

// extractJSON pulls the outermost JSON object out of a model response that
// may be wrapped in markdown fences or prose.
func extractJSON(text string) (string, error) {
	startIndex := strings.Index(text, "{")
	endIndex := strings.LastIndex(text, "}")
	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return "", fmt.Errorf("could not find JSON object in response: %s", text)
	}
	return text[startIndex : endIndex+1], nil
}
