// Package logging builds the structured server logger and the coloured
// status lines printed by the client CLI.
package logging
