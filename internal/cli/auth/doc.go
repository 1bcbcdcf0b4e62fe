// Package auth holds the login, logout and whoami commands.
package auth
