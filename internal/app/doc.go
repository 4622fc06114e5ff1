// Package app wires application dependencies for the two binaries.
//
// ServerConfig and ClientConfig carry the flag-level settings. NewServer
// builds the identity store, responder service and HTTP handler and runs
// them; NewClient builds the transport and initiator service; NewDemo
// wires both ends in-process.
package app
