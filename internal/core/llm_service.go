package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultChatModelName      = "gemini-1.5-flash-latest"
	defaultEmbeddingModelName = "text-embedding-004"
	defaultIntentModelName    = "gemini-1.5-flash-latest"

	advisorSystemInstruction = "You are InternationAlly, a friendly advisor for international students settling " +
		"into a new city. You help with housing, neighborhoods, local services, visas, and student life. " +
		"Ground your answers in the provided context (student guidance documents, property listings, nearby places) " +
		"when it is available, and say clearly when you don't have the information rather than making it up. " +
		"Keep answers practical and concise, and remind students to verify legal or visa matters with their " +
		"international student office."

	intentSystemInstruction = "You are a query analysis system for an international student advisor. " +
		"Extract structured search intents from the user's message and respond with JSON only, no explanations. " +
		"The JSON object has fields: \"intents\" (array drawn from \"housing_search\", \"location_info\", \"student_info\"), " +
		"\"housing\" ({\"location\", \"max_price\", \"bedrooms\", \"property_type\"}), and " +
		"\"location\" ({\"location\", \"place_type\", \"radius_meters\"}). " +
		"Omit intents that do not apply and leave unknown fields empty or zero."
)

// QueryIntents is the structured output of intent analysis. A zero value
// means "just answer conversationally, no tool lookups".
type QueryIntents struct {
	Intents []string `json:"intents"`
	Housing struct {
		Location     string `json:"location"`
		MaxPrice     int    `json:"max_price"`
		Bedrooms     int    `json:"bedrooms"`
		PropertyType string `json:"property_type"`
	} `json:"housing"`
	Location struct {
		Location     string `json:"location"`
		PlaceType    string `json:"place_type"`
		RadiusMeters int    `json:"radius_meters"`
	} `json:"location"`
}

func (q QueryIntents) Has(intent string) bool {
	for _, i := range q.Intents {
		if i == intent {
			return true
		}
	}
	return false
}

type LLMService struct {
	client *genai.Client
}

func NewLLMService(apiKey string) (*LLMService, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

func (s *LLMService) GetEmbedding(text string) ([]float32, error) {
	ctx := context.Background()
	em := s.client.EmbeddingModel(defaultEmbeddingModelName)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}

	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}

// Complete sends the prompt history to the chat model. The last entry must
// be the current user turn.
func (s *LLMService) Complete(ctx context.Context, promptHistory []*genai.Content) (string, error) {
	model := s.client.GenerativeModel(defaultChatModelName)

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(advisorSystemInstruction)},
	}

	if len(promptHistory) == 0 {
		return "", fmt.Errorf("prompt history is empty for chat completion")
	}

	lastUserMessage := promptHistory[len(promptHistory)-1]
	if lastUserMessage.Role != "user" {
		return "", fmt.Errorf("last message in history is not from 'user', cannot proceed with chat completion")
	}

	chatSession := model.StartChat()
	chatSession.History = promptHistory[:len(promptHistory)-1]

	resp, err := chatSession.SendMessage(ctx, lastUserMessage.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Println("Gemini response was empty or had no valid candidates/parts.")
		return "I'm sorry, I couldn't generate a response at this time. Please try again.", nil
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if responseText.Len() == 0 {
		log.Println("Gemini response part was not text or was empty after processing.")
		return "I received an empty or non-text response, please try rephrasing your question.", nil
	}

	return responseText.String(), nil
}

// AnalyzeQuery asks the intent model to extract search intents from a user
// message. Unparseable output degrades to zero intents rather than an error
// so a flaky analysis never blocks the conversational answer.
func (s *LLMService) AnalyzeQuery(ctx context.Context, query string) (QueryIntents, error) {
	var intents QueryIntents

	model := s.client.GenerativeModel(defaultIntentModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(intentSystemInstruction)},
	}

	temp := float32(0.0)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	resp, err := model.GenerateContent(ctx, genai.Text(query))
	if err != nil {
		return intents, fmt.Errorf("gemini intent analysis failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return intents, nil
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}

	if err := json.Unmarshal([]byte(strings.TrimSpace(raw.String())), &intents); err != nil {
		log.Printf("Intent analysis returned unparseable JSON, ignoring: %v", err)
		return QueryIntents{}, nil
	}
	return intents, nil
}
