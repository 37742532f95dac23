// Package sse decodes the push channel the backend offers for recap
// completion events.
//
// The channel is a long-lived HTTP body carrying newline-delimited frames
// ("data: " followed by a JSON payload). The reader buffers partial lines
// across delivered chunks, skips keep-alive noise, and reports malformed
// frames in-band without ending the sequence, so a single bad frame never
// aborts a run. Only the server closing the connection, a transport error,
// or Close terminates the stream.
package sse
