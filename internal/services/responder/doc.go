// Package responder is the server side of the EKE handshake.
//
// Service keeps a registry of live negotiations keyed by (username,
// negotiation id), separate from the identity store. Each entry owns one
// single-use eke.Responder and, once established, the session channel.
//
// Concurrency: a map-wide mutex guards the index only; every entry has its
// own mutex that serialises the rounds of one negotiation. Negotiations for
// different users, or different negotiations of the same user, never share
// state. Lock order is entry before index.
package responder
