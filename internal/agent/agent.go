package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/talespin/server/internal/llm"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/metrics"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/conversations"
)

func New(deps Deps) *Agent {
	return &Agent{
		characters:    deps.Characters,
		conversations: deps.Conversations,
		users:         deps.Users,
		quota:         deps.Quota,
		generator:     deps.Generator,
		images:        deps.Images,
	}
}

// Chat answers a message in character. The daily allowance is consumed before
// the model is called and refunded if the call fails, so a failed generation
// costs the user nothing and leaves the conversation untouched.
func (a *Agent) Chat(ctx context.Context, userID string, req ChatRequest) (*ChatResponse, error) {
	character, err := a.visibleCharacter(ctx, userID, req.CharacterID)
	if err != nil {
		return nil, err
	}

	conv, err := a.conversations.Get(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	if conv.UserID != userID {
		return nil, ErrNotOwner
	}

	decision, err := a.quota.CheckAndConsume(ctx, userID)
	if err != nil {
		metrics.RecordQuotaDecision("error")
		return nil, fmt.Errorf("failed to check quota: %w", err)
	}

	metrics.RecordQuotaDecision(decisionResult(decision))

	if !decision.Allowed {
		return nil, decision.Reason
	}

	messages := make([]llm.Message, 0, len(req.ConversationHistory)+1)
	for _, m := range req.ConversationHistory {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	messages = append(messages, llm.Message{Role: conversations.RoleUser, Content: req.Message})

	start := time.Now()

	resp, err := a.generator.GenerateText(ctx, llm.TextGenerationRequest{
		SystemPrompt: buildChatPrompt(character),
		Messages:     messages,
	})
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = ErrEmptyReply
	}

	if err != nil {
		metrics.RecordGeneration("chat", "failure", time.Since(start))
		a.refund(ctx, decision)

		return nil, &GatewayError{Op: "chat", Err: err}
	}

	metrics.RecordGeneration("chat", "success", time.Since(start))

	err = a.conversations.AppendMessages(ctx, conv.ID,
		conversations.Message{Role: conversations.RoleUser, Content: req.Message},
		conversations.Message{Role: conversations.RoleAssistant, Content: resp.Text},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save messages: %w", err)
	}

	return &ChatResponse{
		Response:       resp.Text,
		ConversationID: conv.ID,
		Usage:          a.quota.SnapshotAfter(decision),
	}, nil
}

// writes a story from a prompt, optionally featuring existing characters
func (a *Agent) GenerateStory(ctx context.Context, userID string, req StoryRequest) (*StoryResponse, error) {
	cast := make([]*characters.Character, 0, len(req.CharacterIDs))

	for _, id := range req.CharacterIDs {
		c, err := a.visibleCharacter(ctx, userID, id)
		if err != nil {
			return nil, err
		}

		cast = append(cast, c)
	}

	start := time.Now()

	resp, err := a.generator.GenerateText(ctx, llm.TextGenerationRequest{
		SystemPrompt: storySystemPrompt,
		Messages: []llm.Message{
			{Role: conversations.RoleUser, Content: buildStoryPrompt(req, cast)},
		},
		MaxTokens: llm.StoryMaxTokens(),
	})
	if err != nil {
		metrics.RecordGeneration("story", "failure", time.Since(start))
		return nil, &GatewayError{Op: "story", Err: err}
	}

	story, err := parseStory(resp.Text)
	if err != nil {
		metrics.RecordGeneration("story", "failure", time.Since(start))
		return nil, &GatewayError{Op: "story", Err: err}
	}

	metrics.RecordGeneration("story", "success", time.Since(start))

	return story, nil
}

// renders an image; premium users only
func (a *Agent) GenerateImage(ctx context.Context, userID string, req ImageRequest) (*ImageResponse, error) {
	premium, err := a.users.IsPremium(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !premium {
		return nil, ErrPremiumRequired
	}

	start := time.Now()

	url, err := a.images.GenerateImage(ctx, buildImagePrompt(req))
	if err == nil && url == "" {
		err = ErrEmptyReply
	}

	if err != nil {
		metrics.RecordGeneration("image", "failure", time.Since(start))
		return nil, &GatewayError{Op: "image", Err: err}
	}

	metrics.RecordGeneration("image", "success", time.Since(start))

	return &ImageResponse{ImageURL: url}, nil
}

// private characters are reported missing to everyone but their owner
func (a *Agent) visibleCharacter(ctx context.Context, userID, id string) (*characters.Character, error) {
	c, err := a.characters.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !c.IsPublic && c.UserID != userID {
		return nil, characters.ErrCharacterNotFound
	}

	return c, nil
}

// the request may already be canceled; the slot still has to go back
func (a *Agent) refund(ctx context.Context, d *quota.Decision) {
	if err := a.quota.Refund(context.WithoutCancel(ctx), d); err != nil {
		logger.FromContext(ctx).Warn("failed to refund quota slot",
			"user_id", d.Record.UserID,
			"error", err,
		)

		return
	}

	if d.Persist {
		metrics.RecordQuotaRefund()
	}
}

func decisionResult(d *quota.Decision) string {
	switch {
	case !d.Allowed:
		return "denied"
	case !d.Persist:
		return "premium"
	case d.Reset:
		return "reset"
	default:
		return "allowed"
	}
}

// reports whether err came from the model provider
func IsGatewayError(err error) bool {
	var gw *GatewayError
	return errors.As(err, &gw)
}
