package gamevents

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformedEvent marks a line that is not a usable event record: invalid
// JSON, or JSON with no event tag.
var ErrMalformedEvent = errors.New("malformed event")

// Kind is the event tag written by the events-logger mod.
type Kind string

// The handled kinds. The mod emits many more tags (BANNED, BUILT_ENTITY,
// TICK, ...); anything not listed here decodes to no variant and is dropped
// by the caller.
const (
	KindAchievementGained Kind = "ACHIEVEMENT_GAINED"
	KindDied              Kind = "DIED"
	KindEvolution         Kind = "EVOLUTION"
	KindJoin              Kind = "JOIN"
	KindLeave             Kind = "LEAVE"
	KindResearchStarted   Kind = "RESEARCH_STARTED"
	KindResearchFinished  Kind = "RESEARCH_FINISHED"
	KindResearchCancelled Kind = "RESEARCH_CANCELLED"
)

// Header carries the fields present on every event record.
type Header struct {
	Name  string `json:"name"`
	Event Kind   `json:"event"`
	Tick  int64  `json:"tick"`
}

// Kind returns the event tag.
func (h Header) Kind() Kind { return h.Event }

// Event is one decoded record from the structured event log.
type Event interface {
	Kind() Kind
	// Format renders the event as a human-readable sentence.
	Format() string
}

// Decode parses one line of the structured event log. It returns
// (nil, error) wrapping ErrMalformedEvent when the line is not valid JSON or
// lacks the event tag, and (nil, nil) for tags outside the handled set —
// those are intentionally unhandled, not errors.
//
// Each variant is filled by a second unmarshal of the same line, so a variant
// only ever sees its own declared fields: extras are ignored and missing
// fields stay zero.
func Decode(line []byte) (Event, error) {
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if h.Event == "" {
		return nil, fmt.Errorf("%w: missing event tag", ErrMalformedEvent)
	}

	var ev Event
	switch h.Event {
	case KindAchievementGained:
		ev = &AchievementGained{}
	case KindDied:
		ev = &Died{}
	case KindEvolution:
		ev = &Evolution{}
	case KindJoin:
		ev = &Join{}
	case KindLeave:
		ev = &Leave{}
	case KindResearchStarted:
		ev = &ResearchStarted{}
	case KindResearchFinished:
		ev = &ResearchFinished{}
	case KindResearchCancelled:
		ev = &ResearchCancelled{}
	default:
		return nil, nil
	}
	if err := json.Unmarshal(line, ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return ev, nil
}

// AchievementGained fires when any player earns an achievement.
type AchievementGained struct {
	Header
	Player          string `json:"player"`
	AchievementName string `json:"achievement_name"`
}

func (e *AchievementGained) Format() string {
	return fmt.Sprintf("Achievement %s accomplished by %s!", prettyName(e.AchievementName), e.Player)
}

// Died fires when a player dies. Cause is the killing entity, "no-cause"
// or empty when the death had none (a cliff fall, poison, ...).
type Died struct {
	Header
	Reason string `json:"reason"`
	Cause  string `json:"cause"`
}

func (e *Died) Format() string {
	switch {
	case e.Cause == "no-cause" || e.Cause == "":
		return fmt.Sprintf("Player %s died to %s", e.Name, prettyName(e.Reason))
	case e.Reason == "PVP":
		return fmt.Sprintf("Player %s died in combat with %s", e.Name, prettyName(e.Cause))
	default:
		return fmt.Sprintf("Player %s died to %s", e.Name, prettyName(e.Cause))
	}
}

// Evolution carries a periodic per-surface evolution factor sample.
type Evolution struct {
	Header
	Stats EvolutionStats `json:"stats"`
}

// EvolutionStats is the payload of an Evolution event.
type EvolutionStats struct {
	Factor  float64 `json:"factor"`
	Surface string  `json:"surface"`
}

func (e *Evolution) Format() string {
	// Surface names are shown verbatim; they are proper nouns, not
	// prototype names.
	return fmt.Sprintf("Evolution has reached %d%% on surface %s",
		int(math.Round(e.Stats.Factor*100)), e.Stats.Surface)
}

// Join fires when a player connects.
type Join struct {
	Header
}

func (e *Join) Format() string {
	return fmt.Sprintf("%s joined the game", e.Name)
}

// Leave fires when a player disconnects; Reason is the disconnect cause
// reported by the server (quit, dropped, kicked, ...).
type Leave struct {
	Header
	Reason string `json:"reason"`
}

func (e *Leave) Format() string {
	return fmt.Sprintf("Player %s left the game: %s", e.Name, prettyName(e.Reason))
}

// ResearchStarted fires when a technology enters the research queue head.
type ResearchStarted struct {
	Header
	Level string `json:"level"`
}

func (e *ResearchStarted) Format() string {
	return formatResearch(e.Name, e.Level, "started")
}

// ResearchFinished fires when a technology completes.
type ResearchFinished struct {
	Header
	Level string `json:"level"`
}

func (e *ResearchFinished) Format() string {
	// The mod reports the technology's *next* level on completion, one ahead
	// of the started/cancelled events. Shift it back so the three line up.
	level := e.Level
	if n, err := strconv.Atoi(level); err == nil && n > 0 {
		level = strconv.Itoa(n - 1)
	}
	return formatResearch(e.Name, level, "finished")
}

// ResearchCancelled fires when a queued or active technology is cancelled.
type ResearchCancelled struct {
	Header
	Level string `json:"level"`
}

func (e *ResearchCancelled) Format() string {
	return formatResearch(e.Name, e.Level, "cancelled")
}

func formatResearch(name, level, verb string) string {
	if level == "no-level" {
		return fmt.Sprintf("Research %s %s!", prettyName(name), verb)
	}
	return fmt.Sprintf("Research %s Level %s %s!", prettyName(name), level, verb)
}

// prettyName turns a hyphenated prototype name ("fluid-handling") into a
// display name ("Fluid Handling").
func prettyName(s string) string {
	parts := strings.Split(s, "-")
	out := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		out = append(out, string(r))
	}
	return strings.Join(out, " ")
}
