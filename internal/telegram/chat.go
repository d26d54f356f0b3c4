package telegram

import "github.com/go-telegram/bot/models"

// EffectiveChat returns the chat an update originated from, or nil when the
// update carries no chat (inline queries, polls, payments).
func EffectiveChat(update *models.Update) *models.Chat {
	if update == nil {
		return nil
	}

	switch {
	case update.Message != nil:
		return &update.Message.Chat
	case update.EditedMessage != nil:
		return &update.EditedMessage.Chat
	case update.ChannelPost != nil:
		return &update.ChannelPost.Chat
	case update.EditedChannelPost != nil:
		return &update.EditedChannelPost.Chat
	case update.CallbackQuery != nil:
		msg := update.CallbackQuery.Message
		if msg.Message != nil {
			return &msg.Message.Chat
		}
		if msg.InaccessibleMessage != nil {
			return &msg.InaccessibleMessage.Chat
		}
		return nil
	case update.MyChatMember != nil:
		return &update.MyChatMember.Chat
	case update.ChatMember != nil:
		return &update.ChatMember.Chat
	case update.ChatJoinRequest != nil:
		return &update.ChatJoinRequest.Chat
	default:
		return nil
	}
}

// UpdateType names the payload carried by an update, matching the Bot API field name.
func UpdateType(update *models.Update) string {
	if update == nil {
		return "none"
	}

	switch {
	case update.Message != nil:
		return "message"
	case update.EditedMessage != nil:
		return "edited_message"
	case update.ChannelPost != nil:
		return "channel_post"
	case update.EditedChannelPost != nil:
		return "edited_channel_post"
	case update.CallbackQuery != nil:
		return "callback_query"
	case update.MyChatMember != nil:
		return "my_chat_member"
	case update.ChatMember != nil:
		return "chat_member"
	case update.ChatJoinRequest != nil:
		return "chat_join_request"
	case update.InlineQuery != nil:
		return "inline_query"
	default:
		return "other"
	}
}

// IsGroupLike reports whether the chat is a group or supergroup.
func IsGroupLike(chat *models.Chat) bool {
	if chat == nil {
		return false
	}
	return chat.Type == models.ChatTypeGroup || chat.Type == models.ChatTypeSupergroup
}
