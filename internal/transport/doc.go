// Package transport carries handshake and application frames between an
// initiator and a responder.
//
// Server exposes a domain.ResponderService over HTTP with JSON bodies:
//
//	POST /register     {"username","secret","kdf"}
//	POST /negotiate12  {"username","data"}                -> {"username","negotiation_id","data"}
//	POST /negotiate34  {"username","negotiation_id","data"} -> same shape
//	POST /negotiate56  {"username","negotiation_id","data"} -> same shape
//	POST /send         {"username","negotiation_id","data"} -> same shape
//	POST /close        {"username","negotiation_id"}
//	GET  /healthz
//
// data is URL-safe base64. Failures are {"error": code, "message": text};
// HTTPClient turns the code back into the matching domain error so that
// errors.Is works on both sides of the wire. Loopback implements the same
// client interface in-process.
package transport
