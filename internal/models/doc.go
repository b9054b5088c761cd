// Package models defines the core domain models for SplitSmart.
//
// # Models
//
//   - User: registered account
//   - Group, Membership: a named set of users sharing expenses
//   - Friendship: a symmetric pair of directed edges between two users
//   - Expense, ExpenseShare: a payment by one user and each participant's part of it
//   - Settlement: an immutable record of a payment between two users
//
// # Design Principles
//
//  1. Balances are derived, never stored: they are computed from unsettled shares.
//  2. Money is decimal.Decimal in memory and integer cents on disk.
//  3. A nil GroupID means a direct (friend) interaction between two users.
//  4. Relationships are held as IDs, not pointers.
package models
