// Command ekeserver is the EKE responder. It stores registered password
// secrets, answers the three handshake rounds over HTTP and acknowledges
// application messages on established sessions.
//
// Usage:
//
//	ekeserver --listen 127.0.0.1:5000 --data-dir ./data [--store-passphrase ...]
//
// Without --data-dir identities are kept in memory and lost on exit. The
// store passphrase may also be given as EKE_STORE_PASSPHRASE.
package main
