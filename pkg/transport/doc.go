// Package transport exposes a PowerService over HTTP.
//
// Routes (chi):
//
//	GET  /healthz
//	GET  /api/v1/attributes              all control endpoints as JSON
//	GET  /api/v1/attributes/{name}       endpoint value as text/plain
//	PUT  /api/v1/attributes/{name}       write text/plain body
//	POST /api/v1/triggers/{source}       autosleep or panel hook, body 0 or 1
//	GET  /api/v1/handlers                registered handlers
//	GET  /api/v1/events                  websocket notification stream
//
// Each websocket connection is registered as a subscriber. Notifications
// are queued per connection; a client that does not keep up is
// disconnected and unsubscribed so that dispatch passes never wait on the
// network.
//
// Client is the matching HTTP and websocket client used by the CLI.
package transport
