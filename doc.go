// Package auth provides credential verification, JWT issuance, identity
// resolution, and the HTTP plumbing that binds authenticated identities to
// requests.
//
// Request authentication:
//   - The middleware in middleware/authware runs a fixed, ordered pair of
//     strategies on every request: a cookie carried JWT, then a shared
//     secret presented as a bearer credential. Strategies never reject;
//     they either bind an identity or leave the request anonymous, and
//     guards convert anonymity into structured 401/403 responses.
//   - The shared secret path resolves a fixed service subject and, when it
//     matches, replaces whatever the token path bound. Operational access
//     wins over user sessions on the same request.
//
// Identity storage:
//   - Users, roles, and their join rows persist via Bun. UserProvider
//     verifies password credentials with bcrypt and maps durable records
//     into immutable per request identities.
//
// Tokens:
//   - TokenService issues HS256 signed JWTs with second granularity
//     issued-at and expiry claims, and validates them with the same clock
//     it signs with so expiry behavior is testable.
package auth
