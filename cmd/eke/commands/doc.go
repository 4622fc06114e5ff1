// Package commands defines the eke client CLI.
//
// Commands
//
//   - register     Derive a password secret and register it with the server
//   - connect      Run the handshake, then send each stdin line and print the reply
//   - send         Run the handshake and send a single message
//   - demo         Register alice/123456 and exchange a message, all in-process
//   - fingerprint  Print the fingerprint of a PEM public key
//
// # Implementation
//
// The root command validates the client flags and builds the transport and
// initiator service before any subcommand runs. Passwords come from
// --password, the EKE_PASSWORD environment variable, or a line on stdin.
package commands
