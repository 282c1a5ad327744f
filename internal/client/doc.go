// Package client is the thin HTTP collaborator for the rental service under
// load. It exposes the operations the load scenario needs (offer creation,
// order creation, status polling, order finish) plus the health probe, and
// leaves all status-code classification to the caller.
//
// A Client holds its own http.Transport. The load runner builds one Client
// per worker so that each simulated user keeps a persistent session and
// workers never contend for each other's connections.
package client
