// Package gamevents decodes the JSON-lines side channel written by the
// events-logger mod: one record per game event, each tagged with an event
// kind, the acting entity's name and the game tick. Decode dispatches the
// tag to a typed variant; each variant knows how to render itself as a
// human-readable sentence via Format.
//
// Only the kinds the relay presents are decoded. The mod's remaining tags
// decode to no variant and are meant to be dropped quietly by the caller.
package gamevents
