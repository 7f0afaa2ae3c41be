package conversations

import (
	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/talespin/conversations"
)

type ConversationsListResponse struct {
	Conversations []conversations.Conversation `json:"conversations"`
	Pagination    pagination.Meta              `json:"pagination"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
