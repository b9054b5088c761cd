package models

// Group is a named set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group.
	ID int64

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user who created the group. The creator is always a member.
	CreatedBy int64

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership links a user to a group. Unique per (GroupID, UserID).
type Membership struct {
	GroupID  int64
	UserID   int64
	JoinedAt int64
}

// Friendship is one directed edge. Edges always exist in pairs:
// (A, B) exists if and only if (B, A) exists.
type Friendship struct {
	UserID    int64
	FriendID  int64
	CreatedAt int64
}
