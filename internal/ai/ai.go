/*
Package ai asks Gemini for a short digest of the headlines selected in a run, for
inclusion in the run report.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shanehull/newsgrid/internal/types"
)

const DefaultModel = "gemini-2.5-flash"

type Digest struct {
	Summary []string `json:"summary"`
	Themes  []string `json:"themes"`
}

func GenerateDigest(ctx context.Context, entries []types.Entry, apiKey string, modelName string) (*Digest, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no headlines to summarize")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: buildUserPrompt(entries)}},
			Role:  "user",
		},
	}

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    getResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return parseDigest(resp.Text())
}

func parseDigest(respText string) (*Digest, error) {
	var digest Digest
	if err := json.Unmarshal([]byte(strings.TrimSpace(respText)), &digest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini JSON response: %w. Raw text: %s", err, respText)
	}
	if len(digest.Summary) > maxBullets {
		digest.Summary = digest.Summary[:maxBullets]
	}
	return &digest, nil
}

func getResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "3-5 concise bullet points summarizing the week's cloud security news.",
			},
			"themes": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Recurring themes across sources, at most three words each.",
			},
		},
		Required: []string{"summary"},
	}
}
