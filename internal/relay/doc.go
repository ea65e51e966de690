// Package relay bridges a Factorio server's text streams and a chat
// platform channel. The Engine:
//   - tails the console log, turning JOIN/LEAVE/CHAT/WARNING lines into
//     channel notifications and forwarding player chat with @mention
//     resolution against the channel roster;
//   - tails the events-logger side channel when enabled, announcing
//     achievements, deaths, joins/leaves and research changes, and tracking
//     per-surface evolution factors in an EvolutionStore;
//   - forwards inbound platform messages to the remote console with reply
//     and mention rendering, framed as "[Discord] name: text".
//
// The two external services are injected as the Chat and Console
// interfaces; the engine never dials or authenticates anything itself.
//
// Lifecycle:
//   - Build the engine with New(cfg, chat, console, logger).
//   - Start(ctx) wipes and watches the configured files.
//   - Feed gateway messages through HandleInbound.
//   - Stop() halts the watchers; there is no drain, the stream is live-only.
//
// Example:
//
//	eng := relay.New(cfg, chatSink, rconSink, logger)
//	eng.OnFatal = func(err error) { cancel() }
//	if err := eng.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Stop()
package relay
