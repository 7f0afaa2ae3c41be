package tui

import (
	"context"
	"time"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/optimistic"
	ws "codeberg.org/talespin/server/internal/websocket"
	"codeberg.org/talespin/server/talespin/conversations"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	feedPageSize       = 20
	characterPageSize  = 50
	requestTimeout     = 30 * time.Second
	chatRequestTimeout = 2 * time.Minute
)

func loadFeed(api API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := api.Feed(ctx, feedPageSize, 0)
		if err != nil {
			return ErrorMsg{err: err}
		}

		return feedLoadedMsg{resp: resp}
	}
}

// runs the remote half of a toggle started with Begin
func sendLike(likes *optimistic.Controller, p *optimistic.Pending) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := likes.Send(ctx, p)

		return likeResultMsg{pending: p, result: result, err: err}
	}
}

func loadCharacters(api API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := api.Characters(ctx, characterPageSize)
		if err != nil {
			return ErrorMsg{err: err}
		}

		return charactersLoadedMsg{resp: resp}
	}
}

func startConversation(api API, c characterView) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		conv, err := api.CreateConversation(ctx, conversations.CreateConversationRequest{
			CharacterID: c.ID,
			Title:       "Chat with " + c.Name,
		})
		if err != nil {
			return ErrorMsg{err: err}
		}

		return conversationStartedMsg{conversation: conv, name: c.Name}
	}
}

func sendChat(api API, req agent.ChatRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatRequestTimeout)
		defer cancel()

		resp, err := api.Chat(ctx, req)
		if err != nil {
			return chatErrorMsg{message: req.Message, err: err}
		}

		return chatReplyMsg{message: req.Message, resp: resp}
	}
}

func loadUsage(api API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		usage, err := api.Usage(ctx)
		if err != nil {
			// anonymous sessions have no usage; the header just omits it
			return nil
		}

		return usageMsg{usage: usage}
	}
}

// waits for the next live feed event
func waitForEvent(events <-chan ws.Message) tea.Cmd {
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}

		return feedEventMsg{msg: msg}
	}
}
