// Package http serves the server rendered event manager pages.
//
// The router exposes the following pages:
//   - GET /: dashboard. The optional filter parameter is one of today,
//     upcoming, past or all; anything else shows today's events.
//   - GET /events/: event list filtered by q, category, start_date and
//     end_date. GET /events/{id}/ shows one event with its participants.
//   - GET|POST /events/create/, GET|POST /events/{id}/edit/ and
//     POST /events/{id}/delete/: event forms.
//   - GET /categories/ with create, edit and delete pages of the same shape.
//   - GET /participants/ with create, edit and delete pages of the same shape.
//
// Mutations redirect with 303 See Other and carry a one-shot notice in a
// signed flash cookie. Forms that fail validation are re-rendered with
// 422 Unprocessable Entity. Unknown ids render the 404 page and GET requests
// to delete addresses render 405.
//
// Templates are embedded from the templates directory; every page is parsed
// together with layout.html.
package http
