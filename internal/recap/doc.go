// Package recap coordinates learning when an asynchronous recap job has
// finished. Completion can arrive over two unreliable channels, a push
// stream and pull status fetches; the coordinator races them, prefers the
// stream while it behaves, falls back to polling on any irregularity, and
// reconciles stream-reported completions against possibly stale metadata
// before presenting a result. The machine is strictly one-directional:
// once polling starts the stream is never revisited, and every run ends in
// exactly one of Done or Failed.
package recap
