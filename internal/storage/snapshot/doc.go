// Package snapshot keeps the student snapshot: a small, non-authoritative
// copy of the logged-in student's profile fields that lets the client greet
// the user by name after a restart, before the backend is asked again.
//
// Snapshots live in the durable KV store, one per profile, and are cleared
// together with the tokens on logout.
package snapshot
