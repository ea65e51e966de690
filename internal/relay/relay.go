package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/EgorLis/FactorioRelay/internal/config"
	"github.com/EgorLis/FactorioRelay/internal/gamevents"
	"github.com/EgorLis/FactorioRelay/internal/tail"
)

// Game-side color markup and chat-side prefixes.
const (
	colorDiscord = "#7289DA"
	colorReply   = "#57aef2"
	colorMention = "#cc7f21"
)

// Engine drives the relay: it tails the game's console log and, when
// enabled, the structured event log, turns recognized lines into outbound
// messages for the two sinks, and forwards inbound chat platform messages to
// the remote console via HandleInbound.
type Engine struct {
	cfg     *config.Config
	chat    Chat
	console Console
	evo     *EvolutionStore
	log     *slog.Logger

	gameLog  *tail.Reader
	eventLog *tail.Reader

	// OnFatal, if set, is invoked when a tail reader dies. A dead reader
	// means silent log loss, so callers usually terminate the process.
	OnFatal func(error)

	mu      sync.Mutex
	started bool
}

// New assembles an engine from its collaborators. A nil logger falls back to
// slog.Default().
func New(cfg *config.Config, chat Chat, console Console, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:     cfg,
		chat:    chat,
		console: console,
		evo:     NewEvolutionStore(),
		log:     logger,
	}
}

// Evolution exposes the per-surface evolution store for query collaborators.
func (e *Engine) Evolution() *EvolutionStore { return e.evo }

// Start wipes the watched files and begins tailing them. The engine runs
// until Stop is called or ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return errors.New("relay: already started")
	}

	gl, err := tail.New(e.cfg.LogFile, true)
	if err != nil {
		return fmt.Errorf("relay: game log: %w", err)
	}
	gl.Log = e.log
	gl.OnChunk = func(data []byte, name string) { e.handleGameChunk(ctx, data, name) }
	gl.OnError = e.fatal

	var el *tail.Reader
	if e.cfg.EventsLogger.Enable {
		el, err = tail.New(e.cfg.EventsLogger.ELFile, true)
		if err != nil {
			return fmt.Errorf("relay: event log: %w", err)
		}
		el.Log = e.log
		el.OnChunk = func(data []byte, name string) { e.handleEventChunk(ctx, data, name) }
		el.OnError = e.fatal
	}

	if err := gl.Start(ctx); err != nil {
		return fmt.Errorf("relay: game log: %w", err)
	}
	if el != nil {
		if err := el.Start(ctx); err != nil {
			gl.Stop()
			return fmt.Errorf("relay: event log: %w", err)
		}
	}

	e.gameLog, e.eventLog = gl, el
	e.started = true
	e.log.Info("relay started", "logFile", e.cfg.LogFile, "eventsLogger", e.cfg.EventsLogger.Enable)
	return nil
}

// Stop halts both tail readers. Inbound platform messages may still be
// handed to HandleInbound afterwards; they are forwarded as usual.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}
	e.gameLog.Stop()
	if e.eventLog != nil {
		e.eventLog.Stop()
	}
	e.started = false
}

func (e *Engine) fatal(err error) {
	if e.OnFatal != nil {
		e.OnFatal(err)
	}
}

// handleGameChunk processes one batch of console log bytes. Lines are
// handled strictly in order: all sends for a line finish before the next
// line is parsed, so relay output never interleaves.
func (e *Engine) handleGameChunk(ctx context.Context, data []byte, name string) {
	bytesRead.WithLabelValues(sourceGameLog).Add(float64(len(data)))
	for _, line := range splitLines(data) {
		linesRead.WithLabelValues(sourceGameLog).Inc()
		e.log.Debug("game log line", "line", line, "file", name)

		out := e.parseGameLine(ctx, line)
		for _, c := range out.Confirms {
			_ = e.sendConsole(ctx, c)
		}
		if out.Chat != "" {
			e.sendChat(ctx, out.Chat)
		}
		if out.Console != "" {
			_ = e.sendConsole(ctx, out.Console)
		}
	}
}

// handleEventChunk processes one batch of structured event log bytes.
func (e *Engine) handleEventChunk(ctx context.Context, data []byte, name string) {
	bytesRead.WithLabelValues(sourceEventLog).Add(float64(len(data)))
	for _, line := range splitLines(data) {
		linesRead.WithLabelValues(sourceEventLog).Inc()
		e.log.Debug("event log line", "line", line, "file", name)

		ev, err := gamevents.Decode([]byte(line))
		if err != nil {
			droppedLines.WithLabelValues("malformed").Inc()
			e.log.Warn("skipping malformed event line", "error", err)
			continue
		}
		if ev == nil {
			droppedLines.WithLabelValues("unhandled").Inc()
			e.log.Debug("unhandled event kind", "line", line)
			continue
		}

		// Evolution is tracked, never announced. The store feeds on-demand
		// queries, so it updates even when the notification toggle is off.
		if evo, ok := ev.(*gamevents.Evolution); ok {
			e.trackEvolution(evo)
			continue
		}

		if !e.cfg.EventEnabled(string(ev.Kind())) {
			droppedLines.WithLabelValues("disabled").Inc()
			e.log.Debug("skipping disabled event", "kind", ev.Kind())
			continue
		}

		chatMsg, consoleMsg := presentEvent(ev)
		if chatMsg != "" {
			e.sendChat(ctx, chatMsg)
		}
		if consoleMsg != "" {
			_ = e.sendConsole(ctx, consoleMsg)
		}
	}
}

// presentEvent maps a decoded event onto its chat and console renderings.
// Either may be empty.
func presentEvent(ev gamevents.Event) (chatMsg, consoleMsg string) {
	f := ev.Format()
	switch ev.Kind() {
	case gamevents.KindAchievementGained:
		return ":trophy: | " + f, ""
	case gamevents.KindJoin:
		return ":green_circle: | " + f, wrapColor("green", f)
	case gamevents.KindLeave:
		return ":red_circle: | " + f, wrapColor("red", f)
	case gamevents.KindDied:
		return ":skull: | " + f, ""
	case gamevents.KindResearchStarted, gamevents.KindResearchFinished, gamevents.KindResearchCancelled:
		return ":alembic: | " + f, ""
	default:
		return f, ""
	}
}

func (e *Engine) trackEvolution(evo *gamevents.Evolution) {
	stats := evo.Stats
	// Space platforms and sandbox labs have their own throwaway surfaces;
	// tracking them would drown out the planets players care about.
	if strings.Contains(stats.Surface, "platform") || strings.Contains(stats.Surface, "bpsb-lab") {
		droppedLines.WithLabelValues("excluded_surface").Inc()
		return
	}
	e.evo.Set(stats.Surface, stats.Factor)
	evolutionFactor.WithLabelValues(stats.Surface).Set(stats.Factor)
	e.log.Debug("evolution sample", "surface", stats.Surface, "factor", stats.Factor)
}

func (e *Engine) sendChat(ctx context.Context, text string) {
	if err := e.chat.Send(ctx, text); err != nil {
		sinkErrors.WithLabelValues("chat").Inc()
		e.log.Error("chat send failed", "error", err)
		return
	}
	sinkSends.WithLabelValues("chat").Inc()
}

// sendConsole issues one console command, wrapping it in a silent
// game.print when message cleaning is active so relayed text does not echo
// back into the log we are tailing.
func (e *Engine) sendConsole(ctx context.Context, text string) error {
	cmd := text
	if e.cfg.CleanMessages {
		cmd = fmt.Sprintf("/silent-command game.print([==[%s]==])", text)
	}
	if _, err := e.console.Send(ctx, cmd); err != nil {
		sinkErrors.WithLabelValues("console").Inc()
		e.log.Error("console send failed", "error", err)
		return err
	}
	sinkSends.WithLabelValues("console").Inc()
	return nil
}

func splitLines(data []byte) []string {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func wrapColor(color, s string) string {
	return "[color=" + color + "]" + s + "[/color]"
}

func plural(count int, text string) string {
	if count == 1 {
		return text
	}
	return text + "s"
}
