package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inbound(content string) InboundMessage {
	return InboundMessage{
		AuthorName: "Dave",
		ChannelID:  "chan-1",
		Content:    content,
	}
}

func TestHandleInboundForwardsToConsoleOnly(t *testing.T) {
	eng, chat, console := testEngine(testConfig(false))

	require.NoError(t, eng.HandleInbound(context.Background(), inbound("hi all")))

	require.Equal(t, []string{"[color=#7289DA][Discord] Dave: hi all[/color]"}, console.sent)
	assert.Empty(t, chat.sent)
}

func TestHandleInboundIgnoresFilteredMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  InboundMessage
	}{
		{"bot author", InboundMessage{AuthorIsBot: true, AuthorName: "OtherBot", ChannelID: "chan-1", Content: "beep"}},
		{"wrong channel", InboundMessage{AuthorName: "Dave", ChannelID: "chan-2", Content: "hi"}},
		{"no text no attachments", InboundMessage{AuthorName: "Dave", ChannelID: "chan-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, console := testEngine(testConfig(false))
			require.NoError(t, eng.HandleInbound(context.Background(), tt.msg))
			assert.Empty(t, console.sent)
		})
	}
}

func TestHandleInboundAttachments(t *testing.T) {
	t.Run("attachment only", func(t *testing.T) {
		eng, _, console := testEngine(testConfig(false))
		msg := inbound("")
		msg.Attachments = 2
		require.NoError(t, eng.HandleInbound(context.Background(), msg))
		require.Equal(t, []string{"[color=#7289DA][Discord] Dave:[/color]\n[2 attachments]"}, console.sent)
	})

	t.Run("text plus single attachment", func(t *testing.T) {
		eng, _, console := testEngine(testConfig(false))
		msg := inbound("look at this")
		msg.Attachments = 1
		require.NoError(t, eng.HandleInbound(context.Background(), msg))
		require.Equal(t, []string{"[color=#7289DA][Discord] Dave: look at this[/color]\n[1 attachment]"}, console.sent)
	})
}

func TestHandleInboundReplyNames(t *testing.T) {
	tests := []struct {
		name string
		ref  *Message
		want string
	}{
		{
			"reply to relayed game chat uses player name",
			&Message{FromSelf: true, AuthorName: "Relay", Content: "steve: anyone seen my car?"},
			"[color=#7289DA][Discord] Dave [color=#57aef2](in reply to steve)[/color]: sure[/color]",
		},
		{
			"reply to relay system message falls back to bot name",
			&Message{FromSelf: true, AuthorName: "Relay", Content: ":trophy: no colon prefix here"},
			"[color=#7289DA][Discord] Dave [color=#57aef2](in reply to Relay)[/color]: sure[/color]",
		},
		{
			"reply to another member uses their name",
			&Message{FromSelf: false, AuthorName: "Erin", Content: "what a base"},
			"[color=#7289DA][Discord] Dave [color=#57aef2](in reply to Erin)[/color]: sure[/color]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, chat, console := testEngine(testConfig(false))
			chat.messages["m-9"] = tt.ref

			msg := inbound("sure")
			msg.ReplyMessageID = "m-9"
			require.NoError(t, eng.HandleInbound(context.Background(), msg))
			require.Equal(t, []string{tt.want}, console.sent)
		})
	}
}

func TestHandleInboundReplyReferenceGone(t *testing.T) {
	eng, _, console := testEngine(testConfig(false))

	msg := inbound("sure")
	msg.ReplyMessageID = "vanished"
	require.NoError(t, eng.HandleInbound(context.Background(), msg))

	// No reference, no suffix; the message still relays.
	require.Equal(t, []string{"[color=#7289DA][Discord] Dave: sure[/color]"}, console.sent)
}

func TestHandleInboundSubstitutesMentions(t *testing.T) {
	eng, chat, console := testEngine(testConfig(false))
	chat.byID["42"] = &Member{ID: "42", Nickname: "Bob"}

	require.NoError(t, eng.HandleInbound(context.Background(), inbound("hey <@42> look")))

	require.Equal(t, []string{"[color=#7289DA][Discord] Dave: hey [color=#cc7f21]@Bob[/color] look[/color]"}, console.sent)
}

func TestHandleInboundUnknownMentionStaysLiteral(t *testing.T) {
	eng, _, console := testEngine(testConfig(false))

	require.NoError(t, eng.HandleInbound(context.Background(), inbound("hey <@9000> look")))

	require.Equal(t, []string{"[color=#7289DA][Discord] Dave: hey <@9000> look[/color]"}, console.sent)
}

func TestHandleInboundCleanMessagesWrapsCommand(t *testing.T) {
	cfg := testConfig(false)
	cfg.CleanMessages = true
	eng, _, console := testEngine(cfg)

	require.NoError(t, eng.HandleInbound(context.Background(), inbound("hi")))

	require.Equal(t,
		[]string{"/silent-command game.print([==[[color=#7289DA][Discord] Dave: hi[/color]]==])"},
		console.sent)
}

func TestHandleInboundPropagatesSendFailure(t *testing.T) {
	eng, _, console := testEngine(testConfig(false))
	console.sendErr = errors.New("not authenticated")

	err := eng.HandleInbound(context.Background(), inbound("hi"))
	require.Error(t, err)
}
