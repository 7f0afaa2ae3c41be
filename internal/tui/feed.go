package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeberg.org/talespin/server/internal/client"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/optimistic"
	ws "codeberg.org/talespin/server/internal/websocket"
	tea "github.com/charmbracelet/bubbletea"
)

func NewFeed(api API, opts Options) *FeedModel {
	reconcile := optimistic.ReconcileNone
	if opts.Reconcile {
		reconcile = optimistic.ReconcileServer
	}

	return &FeedModel{
		likes: optimistic.NewController(api, optimistic.Options{
			Reconcile:        reconcile,
			SerializePerItem: opts.SerializeLikes,
			OnError: func(id string, err error) {
				logger.Warn("like toggle rolled back", "post_id", id, "error", err)
			},
		}),
		posts:   make(map[string]postView),
		loading: true,
	}
}

func (m *FeedModel) Update(msg tea.Msg) (*FeedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case feedLoadedMsg:
		m.hydrate(msg.resp)
		return m, nil

	case likeResultMsg:
		next := m.likes.Complete(msg.pending, msg.result, msg.err)
		if next != nil {
			return m, sendLike(m.likes, next)
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.likes.Items())-1 {
				m.cursor++
			}

		case "l", " ":
			return m, m.toggleSelected()
		}
	}

	return m, nil
}

func (m *FeedModel) hydrate(resp *client.FeedResponse) {
	items := make([]optimistic.Item, 0, len(resp.Posts))
	m.posts = make(map[string]postView, len(resp.Posts))

	for _, p := range resp.Posts {
		items = append(items, optimistic.Item{ID: p.ID, LikesCount: p.LikesCount, Liked: p.Liked})

		caption := ""
		if p.Caption != nil {
			caption = *p.Caption
		}

		m.posts[p.ID] = postView{
			ID:          p.ID,
			ContentType: p.ContentType,
			Caption:     caption,
			Comments:    p.CommentsCount,
		}
	}

	m.likes.Hydrate(items)
	m.loading = false

	if m.cursor >= len(items) {
		m.cursor = max(len(items)-1, 0)
	}
}

// flips the selected post locally and returns the remote call, if one is due
func (m *FeedModel) toggleSelected() tea.Cmd {
	items := m.likes.Items()
	if m.cursor >= len(items) {
		return nil
	}

	p, err := m.likes.Begin(items[m.cursor].ID)
	if err != nil || p.Deferred {
		return nil
	}

	return sendLike(m.likes, p)
}

// applies a live event pushed by the server
func (m *FeedModel) observe(msg ws.Message) {
	switch msg.Type {
	case ws.TypeLikeUpdated:
		var payload ws.LikeUpdatedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}

		m.likes.Observe(payload.PostID, payload.LikesCount)

	case ws.TypeCommentAdded:
		var payload ws.CommentAddedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}

		if p, ok := m.posts[payload.PostID]; ok {
			p.Comments++
			m.posts[payload.PostID] = p
		}
	}
}

func (m *FeedModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("community feed"))
	b.WriteString("\n")

	if m.loading {
		b.WriteString(infoStyle.Render("loading..."))
		return b.String()
	}

	items := m.likes.Items()
	if len(items) == 0 {
		b.WriteString(infoStyle.Render("nothing shared yet"))
		return b.String()
	}

	for i, item := range items {
		post := m.posts[item.ID]

		heart := "♡"
		if item.Liked {
			heart = likedStyle.Render("♥")
		}

		line := fmt.Sprintf("%s %3d  [%s] %s  (%d comments)",
			heart, item.LikesCount, post.ContentType, truncate(post.Caption, 50), post.Comments)

		if m.likes.InFlight(item.ID) {
			line += pendingStyle.Render(" ...")
		}

		if i == m.cursor {
			b.WriteString(itemSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}

		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
