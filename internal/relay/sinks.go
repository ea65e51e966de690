package relay

import "context"

// Console is the remote console collaborator (an authenticated RCON session
// or equivalent). Send issues one command and returns the server's reply;
// it fails if the session is not usable.
type Console interface {
	Send(ctx context.Context, command string) (string, error)
}

// Chat is the chat platform collaborator: the outbound channel sink plus the
// roster and message lookups the relay needs for mentions and replies.
type Chat interface {
	// Send posts text to the relay channel.
	Send(ctx context.Context, text string) error

	// Members returns the current channel roster.
	Members(ctx context.Context) ([]Member, error)

	// Member resolves a platform member id, nil if unknown.
	Member(ctx context.Context, id string) (*Member, error)

	// Message fetches a message by id, nil if it no longer exists.
	Message(ctx context.Context, channelID, messageID string) (*Message, error)
}

// Member is a chat platform roster entry. Any of the name fields other than
// Username may be empty.
type Member struct {
	ID          string
	Nickname    string
	DisplayName string
	GlobalName  string
	Username    string
}

// Mention renders the platform mention token for the member.
func (m Member) Mention() string { return "<@" + m.ID + ">" }

// ShortName is the name shown to game players: the server nickname when one
// is set, otherwise the account username.
func (m Member) ShortName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Username
}

// Message is a fetched chat platform message, used to resolve reply chains.
type Message struct {
	// FromSelf is true when this relay's own account authored the message.
	FromSelf bool

	// AuthorName is the author's display name. For the relay's own messages
	// this is the bot account's display name.
	AuthorName string

	Content string
}

// InboundMessage is one message arriving from the chat platform's gateway.
type InboundMessage struct {
	AuthorIsBot bool

	// AuthorName is the sending member's nickname, falling back to the
	// account username.
	AuthorName string

	ChannelID   string
	Content     string
	Attachments int

	// ReplyMessageID is set when the message replies to another message in
	// the same channel.
	ReplyMessageID string
}
