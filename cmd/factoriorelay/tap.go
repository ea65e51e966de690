package main

import (
	"context"
	"log/slog"

	"github.com/EgorLis/FactorioRelay/internal/relay"
)

// tapConsole stands in for the RCON collaborator: every command is printed
// instead of sent.
type tapConsole struct {
	log *slog.Logger
}

func (t tapConsole) Send(_ context.Context, command string) (string, error) {
	t.log.Info("console send", "command", command)
	return "", nil
}

// tapChat stands in for the chat platform collaborator. The roster is empty,
// so mentions stay literal and replies fall back to author names.
type tapChat struct {
	log *slog.Logger
}

func (t tapChat) Send(_ context.Context, text string) error {
	t.log.Info("chat send", "text", text)
	return nil
}

func (t tapChat) Members(context.Context) ([]relay.Member, error) { return nil, nil }

func (t tapChat) Member(context.Context, string) (*relay.Member, error) { return nil, nil }

func (t tapChat) Message(context.Context, string, string) (*relay.Message, error) { return nil, nil }
