// Package auth provides browser sessions and the password gates that unlock
// content editing.
//
// # Sessions
//
// Every browser gets a luxriel_session cookie holding an HS256 JWT whose
// "sub" claim is a random session id. The cookie has no expiry, so it ends
// with the browser session; the JWT's exp bounds how long a leaked handle is
// usable. Sessions.Middleware puts the id in the request context:
//
//	id := auth.SessionFromContext(r.Context())
//
// # Flags
//
// FlagStore keeps named boolean flags per session in memory. Idle sessions
// are forgotten after the configured TTL and the store is capped in size;
// the oldest session is evicted first.
//
// # Gates
//
// Two gates exist and they do not share state:
//
//   - Gate (editor): id + password, sets the lux_auth flag
//   - ConsoleGate: password only, sets the console_auth flag
//
// A successful challenge unlocks the session until it ends. A failed
// challenge returns false and changes nothing; there is no lockout.
//
// These gates hide editing affordances from casual visitors. The default
// credentials ship with the binary and can be overridden in config, either
// in plain text or as a bcrypt hash produced by `luxriel hash-password`.
package auth
