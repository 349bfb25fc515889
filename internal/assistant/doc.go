// ABOUTME: Package assistant runs the streaming consulting chat sessions
// ABOUTME: Transcript, typing state, and fragment accumulation live here

// Package assistant owns the conversational widget's server side.
//
// A Session holds an append-only transcript. Send appends the user turn and
// an empty assistant placeholder, then folds the generator's fragments into
// the placeholder as a running total, so the visible reply only ever grows.
// Observers subscribe to Events instead of polling the transcript.
//
// The generative backend is opaque: anything that satisfies Generator can
// drive a session. Errors from it never reach the caller as failures; they
// are turned into a fixed apology appended to the reply.
package assistant
