// Package authware implements the per-request authentication pipeline: an
// ordered chain of strategies that inspect the incoming request, attempt to
// resolve a principal, and bind the winner to the request for the remainder
// of its processing.
//
// Two strategies run in a fixed order on every request:
//
//  1. the token strategy reads a signed token from the "auth" cookie and,
//     when it validates, resolves the token's subject;
//  2. the shared secret strategy reads "Authorization: Bearer <secret>" and,
//     when the presented value matches the configured secret, resolves the
//     fixed service subject, overwriting any binding the token strategy
//     made. The operational account always authenticates as itself
//     regardless of per-user token state.
//
// Strategies never reject a request. Malformed tokens, expired tokens, and
// resolver misses are logged and treated as "this strategy did not
// authenticate"; converting the absence of a binding into a 401 is the
// guard's job (RequireAuthenticated, RequireRole).
package authware
