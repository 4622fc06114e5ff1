// Package initiator is the client side of the EKE handshake. It derives the
// password key, drives the three rounds through a domain.ResponderClient and
// hands back a Session for application traffic.
package initiator
