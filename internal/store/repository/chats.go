package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/willow/internal/store"
)

// ChatRepository handles chat history rows.
type ChatRepository struct {
	db *store.Database
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db *store.Database) *ChatRepository {
	return &ChatRepository{db: db}
}

// Save records one exchange.
func (r *ChatRepository) Save(ctx context.Context, userID int, message, response, model string) (*store.ChatHistory, error) {
	query := `
		INSERT INTO chat_history (user_id, user_message, assistant_response, ai_model_used)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, timestamp, user_message, assistant_response, ai_model_used
	`

	chat := &store.ChatHistory{}
	err := r.db.DB().QueryRowContext(ctx, query, userID, message, response, model).Scan(
		&chat.ID, &chat.UserID, &chat.Timestamp,
		&chat.UserMessage, &chat.AssistantResponse, &chat.AIModelUsed,
	)
	if err != nil {
		return nil, fmt.Errorf("saving chat: %w", err)
	}
	return chat, nil
}

// Recent returns a user's latest exchanges, newest first.
func (r *ChatRepository) Recent(ctx context.Context, userID, limit int) ([]*store.ChatHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `
		SELECT id, user_id, timestamp, user_message, assistant_response, ai_model_used
		FROM chat_history
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chat history: %w", err)
	}
	defer rows.Close()

	var chats []*store.ChatHistory
	for rows.Next() {
		chat := &store.ChatHistory{}
		if err := rows.Scan(
			&chat.ID, &chat.UserID, &chat.Timestamp,
			&chat.UserMessage, &chat.AssistantResponse, &chat.AIModelUsed,
		); err != nil {
			return nil, fmt.Errorf("scanning chat row: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}
