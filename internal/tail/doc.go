// Package tail incrementally reads append-only files, typically the game
// server's console log and the events-logger side channel. A Reader watches
// one path for change notifications and, on each one, drains whatever bytes
// sit past its read offset through a small reusable buffer, delivering them
// to a callback as a single chunk.
//
// The offset never moves backwards; a chunk handed to OnChunk has been
// delivered exactly once. The only exception is log rotation: if the file
// shrinks below the offset the Reader resyncs to the start of the file and
// continues from there.
//
// Example:
//
//	r, err := tail.New("factorio/console.log", true)
//	if err != nil { log.Fatal(err) }
//	r.OnChunk = func(data []byte, name string) { fmt.Print(string(data)) }
//	if err := r.Start(ctx); err != nil { log.Fatal(err) }
//	defer r.Stop()
package tail
