package relay

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var mentionRegex = regexp.MustCompile(`<@([0-9]+)>`)

// HandleInbound forwards one chat platform message to the remote console.
// Bot-authored messages, messages outside the relay channel and messages
// with neither text nor attachments are ignored. A send failure is returned
// to the gateway for that message only; it does not poison the relay.
func (e *Engine) HandleInbound(ctx context.Context, msg InboundMessage) error {
	if msg.Content == "" && msg.Attachments == 0 {
		return nil
	}
	if msg.AuthorIsBot {
		return nil
	}
	if msg.ChannelID != e.cfg.Bot.ChatChannel {
		return nil
	}

	reply := e.resolveReply(ctx, msg)
	content := e.substituteMentions(ctx, msg.Content)

	header := "[Discord] " + msg.AuthorName + reply
	var fwd string
	if content == "" {
		// Attachment-only message: just the header and the marker.
		fwd = wrapColor(colorDiscord, header+":") + "\n" + attachmentNote(msg.Attachments)
	} else {
		fwd = wrapColor(colorDiscord, header+": "+content)
		if msg.Attachments != 0 {
			fwd += "\n" + attachmentNote(msg.Attachments)
		}
	}
	return e.sendConsole(ctx, fwd)
}

// resolveReply renders the "(in reply to X)" suffix for reply messages.
// When the referenced message is one of the relay's own and carries a
// "player: text" body, the in-game player name is used; otherwise the
// referenced author's display name.
func (e *Engine) resolveReply(ctx context.Context, msg InboundMessage) string {
	if msg.ReplyMessageID == "" {
		return ""
	}

	ref, err := e.chat.Message(ctx, msg.ChannelID, msg.ReplyMessageID)
	if err != nil || ref == nil {
		if err != nil {
			e.log.Warn("reply reference fetch failed", "error", err)
		}
		return ""
	}

	replyName := ref.AuthorName
	if ref.FromSelf {
		// System notifications start with an emoji and a colon; relayed chat
		// starts with the player name, so a colon past position zero marks
		// a usable name.
		if idx := strings.Index(ref.Content, ":"); idx > 0 {
			replyName = ref.Content[:idx]
		} else if replyName == "" {
			replyName = "relay"
		}
	}
	return " " + wrapColor(colorReply, "(in reply to "+replyName+")")
}

// substituteMentions rewrites literal platform mention tokens into colored
// @name text the game can display. Unresolvable ids stay literal.
func (e *Engine) substituteMentions(ctx context.Context, content string) string {
	for _, match := range mentionRegex.FindAllStringSubmatch(content, -1) {
		id := match[1]
		m, err := e.chat.Member(ctx, id)
		if err != nil || m == nil {
			continue
		}
		name := m.Nickname
		if name == "" {
			name = m.DisplayName
		}
		content = strings.ReplaceAll(content, match[0], wrapColor(colorMention, "@"+name))
	}
	return content
}

func attachmentNote(count int) string {
	return fmt.Sprintf("[%d %s]", count, plural(count, "attachment"))
}
