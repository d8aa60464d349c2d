package store

import "time"

// User carries the advisory profile alongside the credentials. JSON field
// names follow the API contract (camelCase), and the password hash is never
// serialized.
type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	University         string    `json:"university,omitempty"`
	StudentStatus      string    `json:"studentStatus,omitempty"`
	VisaType           string    `json:"visaType,omitempty"`
	HousingPreferences string    `json:"housingPreferences,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName          *string `json:"firstName,omitempty"`
	LastName           *string `json:"lastName,omitempty"`
	University         *string `json:"university,omitempty"`
	StudentStatus      *string `json:"studentStatus,omitempty"`
	VisaType           *string `json:"visaType,omitempty"`
	HousingPreferences *string `json:"housingPreferences,omitempty"`
}

type Conversation struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"userId"`
	Title     *string   `json:"title"` // Nullable
	CreatedAt time.Time `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"id"` // UUID
	ConversationID string    `json:"conversationId"`
	Sender         string    `json:"sender"` // "user" or "assistant"
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

type KBChunk struct {
	ID            int64     `json:"id"`
	Content       string    `json:"content"`
	Embedding     []float32 `json:"-"`
	EmbeddingJSON string    `json:"-"` // Stored as a JSON string in the DB
}
