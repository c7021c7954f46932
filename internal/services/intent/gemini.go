package intent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/version"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	temperature     = 0.1
	maxOutputTokens = 256
)

// ErrEmptyResponse is returned when the model answers without text.
var ErrEmptyResponse = errors.New("classifier returned no text")

// Gemini classifies messages with a Gemini model.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	debug  bool
}

// NewGemini connects to the Gemini API with an API key.
func NewGemini(ctx context.Context, apiKey, modelName string, debug bool) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey), option.WithUserAgent(version.Get().UserAgent()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxOutputTokens)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()

	return &Gemini{client: client, model: model, debug: debug}, nil
}

func responseSchema() *genai.Schema {
	types := make([]string, len(Types))
	for i, t := range Types {
		types[i] = string(t)
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type":      {Type: genai.TypeString, Enum: types},
			"amount":    {Type: genai.TypeNumber, Nullable: true},
			"wallet":    {Type: genai.TypeString, Nullable: true},
			"to_wallet": {Type: genai.TypeString, Nullable: true},
			"category":  {Type: genai.TypeString, Nullable: true},
			"note":      {Type: genai.TypeString, Nullable: true},
		},
		Required: []string{"type"},
	}
}

// Classify sends the message to the model and validates its answer.
func (g *Gemini) Classify(ctx context.Context, req Request) (*Intent, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	if g.debug {
		log.Printf("gemini response: %s", text)
	}

	return ParseIntent(text)
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
