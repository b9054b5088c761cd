// Package api defines the request and response messages of the SplitSmart
// RPC services and the codecs that carry them.
//
// Messages are plain structs. Optional fields are pointers; a nil slice
// means "not provided" where the distinction matters (UpdateExpenseRequest.Shares).
package api

import "github.com/shopspring/decimal"

// User is the public view of an account.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CreatedAt int64  `json:"created_at"`
}

// UserRef is the short form used in listings.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   int64  `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
}

type Share struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Username  string          `json:"username"`
	Amount    decimal.Decimal `json:"amount"`
	IsSettled bool            `json:"is_settled"`
}

// Expense is an expense with its shares. GroupID and GroupName are null
// for a direct expense.
type Expense struct {
	ID          int64           `json:"id"`
	GroupID     *int64          `json:"group_id"`
	GroupName   *string         `json:"group_name"`
	PaidBy      int64           `json:"paid_by"`
	PayerName   string          `json:"payer_name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        int64           `json:"date"`
	Shares      []Share         `json:"shares"`
}

type ShareInput struct {
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

type Settlement struct {
	ID           int64           `json:"id"`
	GroupID      *int64          `json:"group_id"`
	FromUserID   int64           `json:"from_user_id"`
	FromUsername string          `json:"from_username"`
	ToUserID     int64           `json:"to_user_id"`
	ToUsername   string          `json:"to_username"`
	Amount       decimal.Decimal `json:"amount"`
	Date         int64           `json:"date"`
}

type GroupBalance struct {
	Group       Group           `json:"group"`
	MemberCount int             `json:"member_count"`
	Balance     decimal.Decimal `json:"balance"`
}

type FriendBalance struct {
	Friend  UserRef         `json:"friend"`
	Balance decimal.Decimal `json:"balance"`
}

type MemberBalance struct {
	UserID     int64           `json:"user_id"`
	Username   string          `json:"username"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

// Debt is one payment in a simplified group balance sheet.
type Debt struct {
	FromUserID int64           `json:"from_user_id"`
	ToUserID   int64           `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Empty is the response of operations that only report success.
type Empty struct{}

// Auth

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// Users and friends

type GetUserRequest struct {
	UserID int64 `json:"user_id"`
}

type GetUserResponse struct {
	User User `json:"user"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type SearchUsersRequest struct {
	Query string `json:"query"`
}

type SearchUsersResponse struct {
	Users []User `json:"users"`
}

type FindUserByEmailRequest struct {
	Email string `json:"email"`
}

type FindUserByEmailResponse struct {
	User User `json:"user"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

type UpdateProfileResponse struct {
	User User `json:"user"`
}

type AddFriendRequest struct {
	FriendID int64 `json:"friend_id"`
}

type RemoveFriendRequest struct {
	FriendID int64 `json:"friend_id"`
}

type ListFriendsRequest struct{}

type ListFriendsResponse struct {
	Friends []UserRef `json:"friends"`
}

type ListFriendBalancesRequest struct{}

type ListFriendBalancesResponse struct {
	Friends []FriendBalance `json:"friends"`
}

type GetFriendBalanceRequest struct {
	FriendID int64 `json:"friend_id"`
}

type GetFriendBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// Groups

type CreateGroupRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MemberIDs   []int64 `json:"member_ids"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID int64 `json:"group_id"`
}

type GetGroupResponse struct {
	Group   Group     `json:"group"`
	Members []UserRef `json:"members"`
}

type AddGroupMemberRequest struct {
	GroupID int64 `json:"group_id"`
	UserID  int64 `json:"user_id"`
}

type ListGroupMembersRequest struct {
	GroupID int64 `json:"group_id"`
}

type ListGroupMembersResponse struct {
	Members []UserRef `json:"members"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []GroupBalance `json:"groups"`
}

type GetGroupBalanceRequest struct {
	GroupID int64 `json:"group_id"`
}

type GetGroupBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type GetGroupBalancesRequest struct {
	GroupID int64 `json:"group_id"`
}

type GetGroupBalancesResponse struct {
	Members []MemberBalance `json:"members"`
	Debts   []Debt          `json:"debts"`
}

// Expenses and settlements

// CreateExpenseRequest takes either Shares, or SplitEvenly with ParticipantIDs.
type CreateExpenseRequest struct {
	GroupID        *int64           `json:"group_id"`
	Amount         *decimal.Decimal `json:"amount"`
	Description    string           `json:"description"`
	Shares         []ShareInput     `json:"shares"`
	SplitEvenly    bool             `json:"split_evenly"`
	ParticipantIDs []int64          `json:"participant_ids"`
}

type CreateExpenseResponse struct {
	ID int64 `json:"id"`
}

type GetExpenseRequest struct {
	ExpenseID int64 `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID   int64            `json:"expense_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Shares      []ShareInput     `json:"shares"`
}

type DeleteExpenseRequest struct {
	ExpenseID int64 `json:"expense_id"`
}

type ListGroupExpensesRequest struct {
	GroupID int64 `json:"group_id"`
}

type ListGroupExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type ListExpensesWithUserRequest struct {
	UserID int64 `json:"user_id"`
}

type ListExpensesWithUserResponse struct {
	Expenses []Expense `json:"expenses"`
}

// SettleRequest pays ToUserID on behalf of the caller. A null GroupID
// settles direct expenses.
type SettleRequest struct {
	GroupID  *int64           `json:"group_id"`
	ToUserID int64            `json:"to_user_id"`
	Amount   *decimal.Decimal `json:"amount"`
}

type SettleResponse struct {
	SettlementID  int64           `json:"settlement_id"`
	SettledShares int             `json:"settled_shares"`
	SettledTotal  decimal.Decimal `json:"settled_total"`
}

type ListSettlementsRequest struct {
	GroupID *int64 `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}
