// Package service orchestrates calls to the institute backend.
//
// Services contain no transport code of their own. They define the small
// interfaces they need (Requester, TokenStore, SnapshotStore) and receive
// implementations by constructor injection, so tests can run each service
// against a fresh dispatcher and store.
//
// This package contains:
//
//   - AuthService: login, logout, password change and the current user
//   - PortalService: the student's own profile, courses, fees and certificates
//   - CatalogService: public course catalog, certificate verification and
//     the contact form
//
// Every error leaving this package is a domain.DomainError whose Message is
// safe to show to a user. Server text is only kept as the error's cause.
package service
