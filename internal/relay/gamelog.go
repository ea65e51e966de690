package relay

import (
	"context"
	"strings"
)

// outbound is what one plain log line turns into. Confirms are console-only
// acknowledgements (ping confirmations) emitted before the main pair.
type outbound struct {
	Chat     string
	Console  string
	Confirms []string
}

// parseGameLine turns one console log line into its outbound messages.
// Lines look like "12.3 [TAG] player: text"; anything without a usable
// bracketed tag is dropped.
func (e *Engine) parseGameLine(ctx context.Context, line string) outbound {
	brace := strings.Index(line, "]")
	if line == "" || brace <= 1 {
		droppedLines.WithLabelValues("untagged").Inc()
		return outbound{}
	}

	colon := strings.Index(line, ": ")
	var player, contents string
	if colon < brace {
		if brace+2 < len(line) {
			contents = line[brace+2:]
		}
	} else {
		contents = line[colon+2:]
		if colon >= brace+2 {
			player = line[brace+2 : colon]
		}
	}

	switch {
	case strings.Contains(line, "[LEAVE]"):
		// The structured feed carries a disconnect reason; prefer it when
		// available so the same leave is not reported twice.
		if e.cfg.EventsLogger.Enable {
			droppedLines.WithLabelValues("structured_feed").Inc()
			return outbound{}
		}
		return outbound{Chat: ":red_circle: | " + contents, Console: wrapColor("red", contents)}

	case strings.Contains(line, "[JOIN]"):
		if e.cfg.EventsLogger.Enable {
			droppedLines.WithLabelValues("structured_feed").Inc()
			return outbound{}
		}
		return outbound{Chat: ":green_circle: | " + contents, Console: wrapColor("green", contents)}

	case strings.Contains(line, "[CHAT]") && !strings.Contains(line, "[CHAT] <server>"):
		// Map pings and train announcements are game-generated noise, not
		// human chat.
		if strings.Contains(line, "[gps=") || strings.Contains(line, "[train-stop=") || strings.Contains(line, "[train=") {
			droppedLines.WithLabelValues("location_tag").Inc()
			return outbound{}
		}

		resolved, pinged := e.resolveMentions(ctx, contents)
		out := outbound{Chat: player + ": " + resolved}
		if len(pinged) > 0 {
			names := make([]string, len(pinged))
			for i, m := range pinged {
				names[i] = "@" + m.ShortName()
			}
			// Let the game side know the pings actually went through.
			out.Confirms = append(out.Confirms, "Pinged "+wrapColor(colorMention, strings.Join(names, ", ")))
		}
		return out

	case strings.Contains(line, "[WARNING]"):
		return outbound{Chat: ":yellow_circle: | " + contents}
	}

	droppedLines.WithLabelValues("untagged").Inc()
	return outbound{}
}

// resolveMentions scans chat text for @token runs and swaps each one whose
// token matches a roster member (by nickname, display name, global name or
// username, case-insensitively) for that member's platform mention. Tokens
// matching nobody stay literal. The matched members are returned so the
// sender can be told the pings went through.
func (e *Engine) resolveMentions(ctx context.Context, contents string) (string, []Member) {
	scan := contents
	at := strings.IndexByte(scan, '@')
	if at == -1 {
		return contents, nil
	}

	members, err := e.chat.Members(ctx)
	if err != nil {
		e.log.Warn("roster fetch failed, leaving mentions literal", "error", err)
		return contents, nil
	}

	result := contents
	var pinged []Member
	for at != -1 {
		end := strings.IndexByte(scan[at:], ' ')
		if end == -1 {
			end = len(scan)
		} else {
			end += at
		}

		if token := scan[at+1 : end]; token != "" {
			lower := strings.ToLower(token)
			for _, m := range members {
				if memberMatches(m, lower) {
					result = strings.ReplaceAll(result, "@"+token, m.Mention())
					pinged = append(pinged, m)
					break
				}
			}
		}

		if end >= len(scan) {
			break
		}
		next := strings.IndexByte(scan[end:], '@')
		if next == -1 {
			break
		}
		at = end + next
	}
	return result, pinged
}

func memberMatches(m Member, lowerToken string) bool {
	for _, name := range []string{m.Nickname, m.DisplayName, m.GlobalName, m.Username} {
		if name != "" && strings.ToLower(name) == lowerToken {
			return true
		}
	}
	return false
}
