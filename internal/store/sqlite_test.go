package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strptr(s string) *string { return &s }

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("ada@university.edu", "hash", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada@university.edu", user.Email)
	assert.Equal(t, "Ada", user.FirstName)

	byEmail, err := s.GetUserByEmail("ada@university.edu")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := s.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Lovelace", byID.LastName)
}

func TestGetUserByEmailMissingIsNilNil(t *testing.T) {
	s := newTestStore(t)
	user, err := s.GetUserByEmail("nobody@university.edu")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("ada@university.edu", "hash", "Ada", "Lovelace")
	require.NoError(t, err)

	_, err = s.CreateUser("ada@university.edu", "hash2", "Other", "Ada")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateUserProfile(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("ada@university.edu", "hash", "Ada", "Lovelace")
	require.NoError(t, err)

	updated, err := s.UpdateUserProfile(user.ID, ProfileUpdate{
		University: strptr("University of Chicago"),
		VisaType:   strptr("F-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "University of Chicago", updated.University)
	assert.Equal(t, "F-1", updated.VisaType)
	// Untouched fields keep their values.
	assert.Equal(t, "Ada", updated.FirstName)

	// A nil-only update is a no-op read-back.
	same, err := s.UpdateUserProfile(user.ID, ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, updated.University, same.University)
}

func TestConversationsAndMessages(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("ada@university.edu", "hash", "Ada", "Lovelace")
	require.NoError(t, err)

	latest, err := s.GetLatestConversation(user.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	conv, err := s.CreateConversation(user.ID, nil)
	require.NoError(t, err)
	require.NotEmpty(t, conv.ID)

	latest, err = s.GetLatestConversation(user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, conv.ID, latest.ID)

	for i := 0; i < 4; i++ {
		sender := "user"
		if i%2 == 1 {
			sender = "assistant"
		}
		msg := Message{ConversationID: conv.ID, Sender: sender, Content: fmt.Sprintf("message %d", i)}
		require.NoError(t, s.CreateMessage(&msg))
		assert.NotEmpty(t, msg.ID)
		time.Sleep(2 * time.Millisecond) // stored timestamps have millisecond precision
	}

	all, err := s.GetMessagesByConversationID(conv.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "message 0", all[0].Content)
	assert.Equal(t, "message 3", all[3].Content)

	// Distinct UUIDs even for messages created back to back.
	assert.NotEqual(t, all[0].ID, all[1].ID)

	lastTwo, err := s.GetLastNMessages(conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, lastTwo, 2)
	// Newest two, returned in chronological order.
	assert.Equal(t, "message 2", lastTwo[0].Content)
	assert.Equal(t, "message 3", lastTwo[1].Content)
}

func TestRejectsUnknownSender(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("ada@university.edu", "hash", "Ada", "Lovelace")
	require.NoError(t, err)
	conv, err := s.CreateConversation(user.ID, nil)
	require.NoError(t, err)

	err = s.CreateMessage(&Message{ConversationID: conv.ID, Sender: "system", Content: "nope"})
	assert.Error(t, err)
}

func TestIngestKnowledgeBase(t *testing.T) {
	s := newTestStore(t)

	path := filepath.Join(t.TempDir(), "kb.txt")
	content := "Visa rules for F-1 students.\n\nHow to open a bank account.\n\nFinding housing near campus."
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	embedder := func(text string) ([]float32, error) {
		return []float32{float32(len(text)), 1}, nil
	}

	n, err := s.IngestKnowledgeBase(path, embedder)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	chunks, err := s.GetAllKBChunks()
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Visa rules for F-1 students.", chunks[0].Content)
	assert.Len(t, chunks[0].Embedding, 2)

	// Re-ingest replaces rather than appends.
	n, err = s.IngestKnowledgeBase(path, embedder)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	chunks, err = s.GetAllKBChunks()
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}
