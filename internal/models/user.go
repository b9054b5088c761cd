package models

// User represents a registered user account.
type User struct {
	// ID is the unique, immutable identifier for the user.
	ID int64

	// Username is the unique handle chosen at registration.
	Username string

	// Email is the user's email address (unique).
	// Used for login and friend lookup.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never sent over the wire.
	PasswordHash string

	// FullName is the optional display name.
	FullName string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// UserRef is the public projection of a user used in listings.
type UserRef struct {
	ID       int64
	Username string
	FullName string
}
