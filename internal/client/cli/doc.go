// Package cli implements authctl, the command-line client for gophauth.
//
// Commands:
//   - register: create an account (prompts for missing fields and the password)
//   - login:    obtain a bearer token and store it in the token file
//   - whoami:   show the account behind the stored (or --token) token
//   - hash:     print an argon2id hash offline, for seeding users by hand
//
// Passwords are always read from the terminal without echo.
package cli
