package tui

import (
	"context"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/client"
	"codeberg.org/talespin/server/internal/optimistic"
	"codeberg.org/talespin/server/internal/quota"
	ws "codeberg.org/talespin/server/internal/websocket"
	"codeberg.org/talespin/server/talespin/conversations"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// everything the terminal client asks of the server; *client.Client
type API interface {
	optimistic.Toggler
	Feed(ctx context.Context, limit, offset int) (*client.FeedResponse, error)
	Characters(ctx context.Context, limit int) (*client.CharactersResponse, error)
	CreateConversation(ctx context.Context, req conversations.CreateConversationRequest) (*conversations.Conversation, error)
	Chat(ctx context.Context, req agent.ChatRequest) (*agent.ChatResponse, error)
	Usage(ctx context.Context) (*quota.Snapshot, error)
}

// represents the current screen
type AppState int

const (
	StateFeed AppState = iota
	StateCharacters
	StateChat
)

type Options struct {
	Reconcile      bool
	SerializeLikes bool

	// live feed events; nil disables the stream
	Events <-chan ws.Message
}

// main TUI application model
type Model struct {
	state  AppState
	api    API
	events <-chan ws.Message
	width  int
	height int
	err    error
	status string

	feed  *FeedModel
	cast  *CharacterList
	chat  *ChatModel
	usage *quota.Snapshot
}

// a post row; like state lives in the controller
type postView struct {
	ID          string
	ContentType string
	Caption     string
	Comments    int
}

// community feed screen
type FeedModel struct {
	likes   *optimistic.Controller
	posts   map[string]postView
	cursor  int
	loading bool
}

// character picker that opens a conversation
type CharacterList struct {
	items   []characterView
	cursor  int
	loading bool
}

type characterView struct {
	ID          string
	Name        string
	Description string
}

// chat with one character
type ChatModel struct {
	input          textinput.Model
	viewport       viewport.Model
	spinner        spinner.Model
	renderer       *glamour.TermRenderer
	conversationID string
	characterID    string
	characterName  string
	history        []conversations.Message
	isFetching     bool
	notice         string
	width          int
	height         int
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

type feedLoadedMsg struct {
	resp *client.FeedResponse
}

// remote outcome of one like toggle
type likeResultMsg struct {
	pending *optimistic.Pending
	result  *optimistic.Result
	err     error
}

type charactersLoadedMsg struct {
	resp *client.CharactersResponse
}

type conversationStartedMsg struct {
	conversation *conversations.Conversation
	name         string
}

// sent when the agent completes a request
type chatReplyMsg struct {
	message string
	resp    *agent.ChatResponse
}

// sent when the agent encounters an error
type chatErrorMsg struct {
	message string
	err     error
}

type usageMsg struct {
	usage *quota.Snapshot
}

// one event from the live feed stream
type feedEventMsg struct {
	msg ws.Message
}

// the stream channel was closed
type streamClosedMsg struct{}

// the refresher gave up on the session
type SessionExpiredMsg struct{}
