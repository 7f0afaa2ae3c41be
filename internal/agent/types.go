package agent

import (
	"context"
	"errors"

	"codeberg.org/talespin/server/internal/llm"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/conversations"
)

var (
	ErrNotOwner        = errors.New("conversation belongs to another user")
	ErrPremiumRequired = errors.New("image generation is only available for premium users")
	ErrEmptyReply      = errors.New("model returned an empty reply")
	ErrMalformedStory  = errors.New("model reply is not a story object")
)

// GatewayError marks a failed model call. Nothing was committed for the
// request that produced it.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

type CharacterStore interface {
	Get(ctx context.Context, id string) (*characters.Character, error)
}

type ConversationStore interface {
	Get(ctx context.Context, id string) (*conversations.Conversation, error)
	AppendMessages(ctx context.Context, id string, messages ...conversations.Message) error
}

type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// daily allowance gate, satisfied by *quota.Tracker
type QuotaGate interface {
	CheckAndConsume(ctx context.Context, userID string) (*quota.Decision, error)
	Refund(ctx context.Context, d *quota.Decision) error
	SnapshotAfter(d *quota.Decision) quota.Snapshot
}

// everything the agent talks to
type Deps struct {
	Characters    CharacterStore
	Conversations ConversationStore
	Users         PremiumChecker
	Quota         QuotaGate
	Generator     llm.TextGenerator
	Images        llm.ImageGenerator
}

// orchestrates character chat, story and image generation
type Agent struct {
	characters    CharacterStore
	conversations ConversationStore
	users         PremiumChecker
	quota         QuotaGate
	generator     llm.TextGenerator
	images        llm.ImageGenerator
}

type ChatRequest struct {
	ConversationID      string                  `json:"conversation_id" binding:"required,uuid"`
	CharacterID         string                  `json:"character_id" binding:"required,uuid"`
	Message             string                  `json:"message" binding:"required,min=1"`
	ConversationHistory []conversations.Message `json:"conversation_history" binding:"dive"`
}

type ChatResponse struct {
	Response       string         `json:"response"`
	ConversationID string         `json:"conversation_id"`
	Usage          quota.Snapshot `json:"usage"`
}

type StoryRequest struct {
	Prompt       string   `json:"prompt" binding:"required,min=1"`
	Genre        string   `json:"genre" binding:"required,min=1"`
	CharacterIDs []string `json:"character_ids" binding:"dive,uuid"`
}

type StoryResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

type ImageRequest struct {
	Prompt string `json:"prompt" binding:"required,min=1"`
	Style  string `json:"style" binding:"required,min=1"`
}

type ImageResponse struct {
	ImageURL string `json:"image_url"`
}
