package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"internationally/internal/cache"
	"internationally/internal/listings"
	"internationally/internal/places"
	"internationally/internal/store"
)

const historyWindow = 6 // prior messages included in the prompt

// Narrow views of the advisor's collaborators so tests can stub them.
type languageModel interface {
	Complete(ctx context.Context, promptHistory []*genai.Content) (string, error)
	AnalyzeQuery(ctx context.Context, query string) (QueryIntents, error)
}

type contextRetriever interface {
	GetRelevantContext(query string) (string, error)
}

type placesFinder interface {
	Nearby(ctx context.Context, q places.Query) ([]places.Place, error)
}

type listingsFinder interface {
	Search(ctx context.Context, q listings.Query) ([]listings.Property, error)
}

// AdvisorService answers student questions. Per message it analyzes search
// intents, runs the property/places lookups those intents call for, retrieves
// guidance passages from the knowledge base, and feeds everything plus the
// recent conversation into the chat model. Tool failures degrade to an answer
// without that context; they never fail the request.
type AdvisorService struct {
	dbStore  *store.SQLiteStore
	llm      languageModel
	rag      contextRetriever
	places   placesFinder
	listings listingsFinder
	cache    *cache.Cache // nil disables caching
}

func NewAdvisorService(db *store.SQLiteStore, llm languageModel, rag contextRetriever, pl placesFinder, li listingsFinder, c *cache.Cache) *AdvisorService {
	return &AdvisorService{
		dbStore:  db,
		llm:      llm,
		rag:      rag,
		places:   pl,
		listings: li,
		cache:    c,
	}
}

// Respond handles one authenticated chat turn: persists the user message in
// the student's current conversation, generates the reply, persists it, and
// returns it.
func (s *AdvisorService) Respond(ctx context.Context, user *store.User, content string) (string, error) {
	conv, err := s.dbStore.GetLatestConversation(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		conv, err = s.dbStore.CreateConversation(user.ID, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create conversation: %w", err)
		}
	}

	history, err := s.dbStore.GetLastNMessages(conv.ID, historyWindow)
	if err != nil {
		log.Printf("Error loading history for conversation %s: %v. Proceeding without history.", conv.ID, err)
		history = nil
	}

	userMsg := store.Message{ConversationID: conv.ID, Sender: "user", Content: content}
	if err := s.dbStore.CreateMessage(&userMsg); err != nil {
		return "", fmt.Errorf("failed to store user message: %w", err)
	}

	reply, err := s.generate(ctx, user, history, content)
	if err != nil {
		return "", err
	}

	assistantMsg := store.Message{ConversationID: conv.ID, Sender: "assistant", Content: reply}
	if err := s.dbStore.CreateMessage(&assistantMsg); err != nil {
		return "", fmt.Errorf("failed to store assistant message: %w", err)
	}
	return reply, nil
}

// RespondOnce generates a reply for the legacy unauthenticated chat surface.
// The caller owns the history; nothing is persisted.
func (s *AdvisorService) RespondOnce(ctx context.Context, history []store.Message, content string) (string, error) {
	return s.generate(ctx, nil, history, content)
}

func (s *AdvisorService) generate(ctx context.Context, profile *store.User, history []store.Message, query string) (string, error) {
	intents, err := s.llm.AnalyzeQuery(ctx, query)
	if err != nil {
		log.Printf("Intent analysis failed, answering without tool lookups: %v", err)
		intents = QueryIntents{}
	}

	var toolContext strings.Builder
	if intents.Has("housing_search") && s.listings != nil {
		if text := s.lookupListings(ctx, profile, intents); text != "" {
			toolContext.WriteString(text)
			toolContext.WriteString("\n\n")
		}
	}
	if intents.Has("location_info") && s.places != nil {
		if text := s.lookupPlaces(ctx, intents); text != "" {
			toolContext.WriteString(text)
			toolContext.WriteString("\n\n")
		}
	}

	ragContext := ""
	if s.rag != nil {
		ragContext, err = s.rag.GetRelevantContext(query)
		if err != nil {
			log.Printf("Failed to get relevant context, proceeding without it: %v", err)
			ragContext = ""
		}
	}

	var promptHistory []*genai.Content
	for _, msg := range history {
		role := "user"
		if msg.Sender == "assistant" {
			role = "model"
		}
		promptHistory = append(promptHistory, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	var final strings.Builder
	if profile != nil {
		final.WriteString(profileSummary(profile))
		final.WriteString("\n\n")
	}
	if toolContext.Len() > 0 {
		final.WriteString("Current search results:\n\n")
		final.WriteString(toolContext.String())
	}
	if ragContext != "" {
		final.WriteString("Relevant guidance for international students:\n\n--- CONTEXT START ---\n")
		final.WriteString(ragContext)
		final.WriteString("\n--- CONTEXT END ---\n\n")
	}
	final.WriteString("Question: ")
	final.WriteString(query)

	promptHistory = append(promptHistory, &genai.Content{
		Role:  "user",
		Parts: []genai.Part{genai.Text(final.String())},
	})

	reply, err := s.llm.Complete(ctx, promptHistory)
	if err != nil {
		return "", fmt.Errorf("failed to get LLM completion: %w", err)
	}
	return reply, nil
}

func (s *AdvisorService) lookupListings(ctx context.Context, profile *store.User, intents QueryIntents) string {
	q := listings.Query{
		Location:     intents.Housing.Location,
		PropertyType: intents.Housing.PropertyType,
		MaxPrice:     intents.Housing.MaxPrice,
		Bedrooms:     intents.Housing.Bedrooms,
	}
	if q.Location == "" && profile != nil && profile.University != "" {
		q.Location = profile.University
	}

	key := cache.Key("housing", q)
	var props []listings.Property
	if !s.cache.GetJSON(ctx, key, &props) {
		var err error
		props, err = s.listings.Search(ctx, q)
		if err != nil {
			log.Printf("Property search failed, answering without listings: %v", err)
			return ""
		}
		s.cache.SetJSON(ctx, key, props)
	}

	if len(props) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Available properties:\n")
	for _, p := range props {
		fmt.Fprintf(&b, "- %s, %s %s: $%.0f/month, %.0f bed / %.1f bath (%s)\n",
			p.Address, p.City, p.Zipcode, p.Price, p.Bedrooms, p.Bathrooms, p.URL)
	}
	return b.String()
}

func (s *AdvisorService) lookupPlaces(ctx context.Context, intents QueryIntents) string {
	q := places.Query{
		Location:  intents.Location.Location,
		PlaceType: intents.Location.PlaceType,
		Radius:    intents.Location.RadiusMeters,
	}

	key := cache.Key("places", q)
	var results []places.Place
	if !s.cache.GetJSON(ctx, key, &results) {
		var err error
		results, err = s.places.Nearby(ctx, q)
		if err != nil {
			log.Printf("Places search failed, answering without local results: %v", err)
			return ""
		}
		s.cache.SetJSON(ctx, key, results)
	}

	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Nearby places:\n")
	for _, p := range results {
		open := ""
		if p.OpenNow {
			open = ", open now"
		}
		fmt.Fprintf(&b, "- %s (%s): rated %.1f by %d people%s\n",
			p.Name, p.Address, p.Rating, p.UserRatingsTotal, open)
	}
	return b.String()
}

func profileSummary(u *store.User) string {
	var parts []string
	if u.FirstName != "" {
		parts = append(parts, "name: "+strings.TrimSpace(u.FirstName+" "+u.LastName))
	}
	if u.University != "" {
		parts = append(parts, "university: "+u.University)
	}
	if u.StudentStatus != "" {
		parts = append(parts, "student status: "+u.StudentStatus)
	}
	if u.VisaType != "" {
		parts = append(parts, "visa type: "+u.VisaType)
	}
	if u.HousingPreferences != "" {
		parts = append(parts, "housing preferences: "+u.HousingPreferences)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Student profile (" + strings.Join(parts, "; ") + ")"
}
