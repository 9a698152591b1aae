// Package chat models the assistant conversation: operating modes, the
// message variant shown in a transcript, and an ephemeral session that sends
// one request at a time.
//
// # Messages
//
// A [Message] carries exactly one [Content] variant: [Text], [Image],
// [MindMap] or [Failure]. The set is closed; code that renders messages
// switches over it exhaustively, see [Describe].
//
// # Sessions
//
// A [Session] lives in memory only. It starts with the welcome message and
// forgets everything when dropped. [Session.Send] appends the user's turn,
// dispatches on the [Mode] (text modes ask for a reply, VISUAL for an image,
// MINDMAP for a tree) and appends the reply, or a [Failure] carrying the
// fixed error text when generation fails. While a request is in flight
// further sends are rejected with a BUSY error.
package chat
