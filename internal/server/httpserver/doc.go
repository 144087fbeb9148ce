// Package httpserver provides the local JSON gateway started by
// "maxedu serve".
//
// The gateway exposes one student session over HTTP:
//
//   - Session endpoints: /api/session, /api/session/login, /api/session/logout
//   - Public pages: /api/catalog, /api/certificates/verify/{number}, /api/contact
//   - Student portal: /api/portal/* (behind the route guard)
//   - Operations: /healthz, /metrics
//
// Portal routes pass the route guard, which answers 503 while the session
// is loading and redirects to the login path when nobody is logged in.
// Every response carries an X-Request-ID and portal responses are marked
// no-store.
package httpserver
