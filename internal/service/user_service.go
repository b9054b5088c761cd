package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/pkg/api"
)

const searchLimit = 10

// UserStore is the storage the user service reads and writes.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, fullName, email string) error
	AddFriendship(ctx context.Context, userID, friendID int64) error
	RemoveFriendship(ctx context.Context, userID, friendID int64) error
	IsFriend(ctx context.Context, userID, otherID int64) (bool, error)
	ListFriends(ctx context.Context, userID int64) ([]models.UserRef, error)
}

// UserService implements user lookup, profiles and friendships.
type UserService struct {
	store UserStore
	calc  *calculator.Calculator
}

func NewUserService(store UserStore, calc *calculator.Calculator) *UserService {
	return &UserService{store: store, calc: calc}
}

func (s *UserService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("GetUser", err)
	}
	return connect.NewResponse(&api.GetUserResponse{User: toAPIUser(user)}), nil
}

func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, toConnectError("ListUsers", err)
	}
	return connect.NewResponse(&api.ListUsersResponse{Users: toAPIUsers(users)}), nil
}

// SearchUsers matches the query against usernames and emails, at most ten results.
func (s *UserService) SearchUsers(ctx context.Context, req *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Msg.Query)
	if query == "" {
		return nil, toConnectError("SearchUsers", apperr.Validation("search query is required"))
	}
	users, err := s.store.SearchUsers(ctx, query, searchLimit)
	if err != nil {
		return nil, toConnectError("SearchUsers", err)
	}
	return connect.NewResponse(&api.SearchUsersResponse{Users: toAPIUsers(users)}), nil
}

// FindUserByEmail looks up a prospective friend.
func (s *UserService) FindUserByEmail(ctx context.Context, req *connect.Request[api.FindUserByEmailRequest]) (*connect.Response[api.FindUserByEmailResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Msg.Email))
	if email == "" {
		return nil, toConnectError("FindUserByEmail", apperr.Validation("email is required"))
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, toConnectError("FindUserByEmail", err)
	}
	if user.ID == userID {
		return nil, toConnectError("FindUserByEmail", apperr.Validation("cannot add yourself as a friend"))
	}
	friends, err := s.store.IsFriend(ctx, userID, user.ID)
	if err != nil {
		return nil, toConnectError("FindUserByEmail", err)
	}
	if friends {
		return nil, toConnectError("FindUserByEmail", apperr.Validation("already friends with this user"))
	}
	return connect.NewResponse(&api.FindUserByEmailResponse{User: toAPIUser(user)}), nil
}

// UpdateProfile changes the caller's full name and/or email. Absent fields keep their value.
func (s *UserService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError("UpdateProfile", err)
	}

	if req.Msg.FullName != nil {
		user.FullName = strings.TrimSpace(*req.Msg.FullName)
	}
	if req.Msg.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Msg.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, toConnectError("UpdateProfile", apperr.Validation("invalid email address"))
		}
		user.Email = email
	}

	if err := s.store.UpdateUserProfile(ctx, userID, user.FullName, user.Email); err != nil {
		return nil, toConnectError("UpdateProfile", err)
	}
	slog.Info("Profile updated", "user_id", userID)
	return connect.NewResponse(&api.UpdateProfileResponse{User: toAPIUser(user)}), nil
}

func (s *UserService) AddFriend(ctx context.Context, req *connect.Request[api.AddFriendRequest]) (*connect.Response[api.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	friendID := req.Msg.FriendID
	switch {
	case friendID <= 0:
		return nil, toConnectError("AddFriend", apperr.Validation("friend_id is required"))
	case friendID == userID:
		return nil, toConnectError("AddFriend", apperr.Validation("cannot add yourself as a friend"))
	}
	if _, err := s.store.GetUserByID(ctx, friendID); err != nil {
		return nil, toConnectError("AddFriend", err)
	}
	if err := s.store.AddFriendship(ctx, userID, friendID); err != nil {
		return nil, toConnectError("AddFriend", err)
	}
	slog.Info("Friend added", "user_id", userID, "friend_id", friendID)
	return connect.NewResponse(&api.Empty{}), nil
}

// RemoveFriend deletes the friendship. Direct expenses are kept.
func (s *UserService) RemoveFriend(ctx context.Context, req *connect.Request[api.RemoveFriendRequest]) (*connect.Response[api.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveFriendship(ctx, userID, req.Msg.FriendID); err != nil {
		return nil, toConnectError("RemoveFriend", err)
	}
	slog.Info("Friend removed", "user_id", userID, "friend_id", req.Msg.FriendID)
	return connect.NewResponse(&api.Empty{}), nil
}

func (s *UserService) ListFriends(ctx context.Context, req *connect.Request[api.ListFriendsRequest]) (*connect.Response[api.ListFriendsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListFriends", err)
	}
	return connect.NewResponse(&api.ListFriendsResponse{Friends: toAPIUserRefs(friends)}), nil
}

// ListFriendBalances returns every friend with the direct balance between them.
func (s *UserService) ListFriendBalances(ctx context.Context, req *connect.Request[api.ListFriendBalancesRequest]) (*connect.Response[api.ListFriendBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	friends, err := s.calc.ListFriendsWithBalances(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListFriendBalances", err)
	}

	out := make([]api.FriendBalance, len(friends))
	for i, f := range friends {
		out[i] = api.FriendBalance{
			Friend:  api.UserRef{ID: f.Friend.ID, Username: f.Friend.Username, FullName: f.Friend.FullName},
			Balance: f.Balance,
		}
	}
	return connect.NewResponse(&api.ListFriendBalancesResponse{Friends: out}), nil
}

func (s *UserService) GetFriendBalance(ctx context.Context, req *connect.Request[api.GetFriendBalanceRequest]) (*connect.Response[api.GetFriendBalanceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := s.calc.FriendBalance(ctx, userID, req.Msg.FriendID)
	if err != nil {
		return nil, toConnectError("GetFriendBalance", err)
	}
	return connect.NewResponse(&api.GetFriendBalanceResponse{Balance: balance}), nil
}
