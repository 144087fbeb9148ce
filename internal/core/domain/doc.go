// Package domain defines the core domain models for the Max Education client.
//
// Domain models are plain values without IO dependencies or framework
// coupling. This package contains:
//
//   - Tokens: the access/refresh credential pair
//   - AuthenticatedUser, Student, StudentSnapshot: identity of the logged-in student
//   - Envelope, Result: the backend's response wrapper and its tagged outcome
//   - Course, Enrollment, Fee, Certificate, ContactMessage: portal resources
//   - Errors: the client error taxonomy and its user-safe messages
package domain
