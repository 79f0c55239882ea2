// Package session runs conversational searches.
//
// A Manager owns the lifecycle of each session (active, then completed or
// expired) and processes user messages one at a time per session:
//
//	message -> extraction -> relaxation -> ranking -> reply
//
// Messages for different sessions are processed in parallel. A message is applied
// to a copy of the session, and the copy is saved only after the candidate query
// succeeds, so a failed or timed out query leaves the stored session untouched and
// the message can simply be sent again.
//
// Sessions expire after an idle period (30 minutes by default). Expiry is applied
// lazily whenever a session is loaded, and in bulk by ExpireIdle / RunJanitor.
package session
