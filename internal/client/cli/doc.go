// Package cli provides the interactive Verixa command-line client: a REPL
// over the auth server's HTTP API with register, login, whoami, refresh,
// logout and resend commands. Passwords are read without echo and wiped
// after use. The REPL is started via App.Run and blocks until the user exits.
package cli
