package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitsmart/internal/access"
	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/auth"
	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/expense"
	"github.com/mmynk/splitsmart/internal/middleware"
	"github.com/mmynk/splitsmart/internal/settlement"
	"github.com/mmynk/splitsmart/internal/storage/sqlite"
	"github.com/mmynk/splitsmart/pkg/api"
	"github.com/mmynk/splitsmart/pkg/api/apiconnect"
)

type testServer struct {
	url string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	guard := access.NewGuard(store)
	calc := calculator.New(store, guard, 2)

	authed := connect.WithInterceptors(middleware.RequireAuth(jwtManager))
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, store, logger),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	))
	mux.Handle(apiconnect.NewUserServiceHandler(NewUserService(store, calc), authed))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, guard, calc), authed))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(
		expense.NewEngine(store, guard, nil),
		settlement.NewProcessor(store, guard, nil),
		store,
	), authed))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{url: srv.URL}
}

// withToken sets the bearer token on every call.
func withToken(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}))
}

type testClient struct {
	id      int64
	auth    *apiconnect.AuthServiceClient
	users   *apiconnect.UserServiceClient
	groups  *apiconnect.GroupServiceClient
	expense *apiconnect.ExpenseServiceClient
}

// register signs up name and returns clients acting as that user.
func (s *testServer) register(t *testing.T, name string, opts ...connect.ClientOption) *testClient {
	t.Helper()

	authClient := apiconnect.NewAuthServiceClient(http.DefaultClient, s.url)
	res, err := authClient.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "password123",
		FullName: name,
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}

	opts = append(opts, withToken(res.Msg.Token))
	return &testClient{
		id:      res.Msg.User.ID,
		auth:    apiconnect.NewAuthServiceClient(http.DefaultClient, s.url, opts...),
		users:   apiconnect.NewUserServiceClient(http.DefaultClient, s.url, opts...),
		groups:  apiconnect.NewGroupServiceClient(http.DefaultClient, s.url, opts...),
		expense: apiconnect.NewExpenseServiceClient(http.DefaultClient, s.url, opts...),
	}
}

func d(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

func assertBalance(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected balance %s, got %s", want, got)
	}
}

func TestAuthService(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice")
	public := apiconnect.NewAuthServiceClient(http.DefaultClient, srv.url)

	t.Run("login returns a usable token", func(t *testing.T) {
		res, err := public.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "ALICE@example.com",
			Password: "password123",
		}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if res.Msg.User.ID != alice.id || res.Msg.Token == "" {
			t.Errorf("unexpected login response: %+v", res.Msg)
		}
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		_, err := public.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "alice@example.com",
			Password: "nope-nope-nope",
		}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		_, err := public.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "password123",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("GetCurrentUser", func(t *testing.T) {
		res, err := alice.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if res.Msg.User.Username != "alice" {
			t.Errorf("expected alice, got %q", res.Msg.User.Username)
		}

		_, err = public.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("protected services require a token", func(t *testing.T) {
		anon := apiconnect.NewGroupServiceClient(http.DefaultClient, srv.url)
		_, err := anon.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestUserService(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice")
	bob := srv.register(t, "bob")
	srv.register(t, "bobby")

	t.Run("SearchUsers", func(t *testing.T) {
		res, err := alice.users.SearchUsers(ctx, connect.NewRequest(&api.SearchUsersRequest{Query: "bob"}))
		if err != nil {
			t.Fatalf("SearchUsers failed: %v", err)
		}
		if len(res.Msg.Users) != 2 {
			t.Errorf("expected 2 matches, got %d", len(res.Msg.Users))
		}

		_, err = alice.users.SearchUsers(ctx, connect.NewRequest(&api.SearchUsersRequest{Query: "  "}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("AddFriend validation", func(t *testing.T) {
		tests := []struct {
			name     string
			friendID int64
			want     connect.Code
		}{
			{"missing id", 0, connect.CodeInvalidArgument},
			{"self", alice.id, connect.CodeInvalidArgument},
			{"unknown user", 9999, connect.CodeNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := alice.users.AddFriend(ctx, connect.NewRequest(&api.AddFriendRequest{FriendID: tt.friendID}))
				assertCode(t, err, tt.want)
			})
		}
	})

	t.Run("friendship is symmetric", func(t *testing.T) {
		if _, err := alice.users.FindUserByEmail(ctx, connect.NewRequest(&api.FindUserByEmailRequest{Email: "bob@example.com"})); err != nil {
			t.Fatalf("FindUserByEmail failed: %v", err)
		}
		if _, err := alice.users.AddFriend(ctx, connect.NewRequest(&api.AddFriendRequest{FriendID: bob.id})); err != nil {
			t.Fatalf("AddFriend failed: %v", err)
		}

		res, err := bob.users.ListFriends(ctx, connect.NewRequest(&api.ListFriendsRequest{}))
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(res.Msg.Friends) != 1 || res.Msg.Friends[0].ID != alice.id {
			t.Errorf("expected bob's friends to be [alice], got %+v", res.Msg.Friends)
		}

		_, err = alice.users.FindUserByEmail(ctx, connect.NewRequest(&api.FindUserByEmailRequest{Email: "bob@example.com"}))
		assertCode(t, err, connect.CodeInvalidArgument)
		_, err = alice.users.AddFriend(ctx, connect.NewRequest(&api.AddFriendRequest{FriendID: bob.id}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("UpdateProfile keeps absent fields", func(t *testing.T) {
		name := "Alice Liddell"
		res, err := alice.users.UpdateProfile(ctx, connect.NewRequest(&api.UpdateProfileRequest{FullName: &name}))
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if res.Msg.User.FullName != name || res.Msg.User.Email != "alice@example.com" {
			t.Errorf("unexpected profile: %+v", res.Msg.User)
		}

		taken := "bob@example.com"
		_, err = alice.users.UpdateProfile(ctx, connect.NewRequest(&api.UpdateProfileRequest{Email: &taken}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("RemoveFriend", func(t *testing.T) {
		if _, err := bob.users.RemoveFriend(ctx, connect.NewRequest(&api.RemoveFriendRequest{FriendID: alice.id})); err != nil {
			t.Fatalf("RemoveFriend failed: %v", err)
		}
		_, err := alice.users.GetFriendBalance(ctx, connect.NewRequest(&api.GetFriendBalanceRequest{FriendID: bob.id}))
		assertCode(t, err, connect.CodePermissionDenied)
		_, err = alice.users.RemoveFriend(ctx, connect.NewRequest(&api.RemoveFriendRequest{FriendID: bob.id}))
		assertCode(t, err, connect.CodeNotFound)
	})
}

func TestGroupExpenseFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice")
	bob := srv.register(t, "bob")
	carol := srv.register(t, "carol")
	mallory := srv.register(t, "mallory")

	created, err := alice.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:      "Trip",
		MemberIDs: []int64{bob.id},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID

	if _, err := bob.groups.AddGroupMember(ctx, connect.NewRequest(&api.AddGroupMemberRequest{GroupID: groupID, UserID: carol.id})); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}

	t.Run("non-members are rejected", func(t *testing.T) {
		_, err := mallory.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
		assertCode(t, err, connect.CodePermissionDenied)
		_, err = mallory.groups.AddGroupMember(ctx, connect.NewRequest(&api.AddGroupMemberRequest{GroupID: groupID, UserID: mallory.id}))
		assertCode(t, err, connect.CodePermissionDenied)
		_, err = mallory.expense.ListGroupExpenses(ctx, connect.NewRequest(&api.ListGroupExpensesRequest{GroupID: groupID}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("CreateGroup requires a name", func(t *testing.T) {
		_, err := alice.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: " "}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	// alice pays 90 split three ways.
	res, err := alice.expense.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:        &groupID,
		Amount:         d("90"),
		Description:    "Dinner",
		SplitEvenly:    true,
		ParticipantIDs: []int64{alice.id, bob.id, carol.id},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	dinnerID := res.Msg.ID

	t.Run("shares must sum to total", func(t *testing.T) {
		_, err := alice.expense.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			GroupID:     &groupID,
			Amount:      d("50"),
			Description: "Taxi",
			Shares: []api.ShareInput{
				{UserID: alice.id, Amount: decimal.RequireFromString("20")},
				{UserID: bob.id, Amount: decimal.RequireFromString("20")},
			},
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("balances", func(t *testing.T) {
		res, err := alice.groups.GetGroupBalance(ctx, connect.NewRequest(&api.GetGroupBalanceRequest{GroupID: groupID}))
		if err != nil {
			t.Fatalf("GetGroupBalance failed: %v", err)
		}
		assertBalance(t, res.Msg.Balance, "60")

		sheet, err := bob.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: groupID}))
		if err != nil {
			t.Fatalf("GetGroupBalances failed: %v", err)
		}
		if len(sheet.Msg.Members) != 3 || len(sheet.Msg.Debts) != 2 {
			t.Fatalf("expected 3 members and 2 debts, got %+v", sheet.Msg)
		}
		if sheet.Msg.Members[0].UserID != alice.id {
			t.Errorf("expected alice first, got %+v", sheet.Msg.Members[0])
		}

		groups, err := bob.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups.Msg.Groups) != 1 || groups.Msg.Groups[0].MemberCount != 3 {
			t.Fatalf("unexpected groups: %+v", groups.Msg.Groups)
		}
		assertBalance(t, groups.Msg.Groups[0].Balance, "-30")
	})

	t.Run("only the payer edits", func(t *testing.T) {
		desc := "Late dinner"
		_, err := bob.expense.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: dinnerID, Description: &desc}))
		assertCode(t, err, connect.CodePermissionDenied)
		_, err = bob.expense.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: dinnerID}))
		assertCode(t, err, connect.CodePermissionDenied)

		if _, err := alice.expense.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: dinnerID, Description: &desc})); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		got, err := carol.expense.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: dinnerID}))
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Msg.Expense.Description != desc || got.Msg.Expense.GroupName == nil || *got.Msg.Expense.GroupName != "Trip" {
			t.Errorf("unexpected expense: %+v", got.Msg.Expense)
		}
	})

	t.Run("settle", func(t *testing.T) {
		res, err := bob.expense.Settle(ctx, connect.NewRequest(&api.SettleRequest{
			GroupID:  &groupID,
			ToUserID: alice.id,
			Amount:   d("30"),
		}))
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if res.Msg.SettledShares != 1 {
			t.Errorf("expected 1 settled share, got %d", res.Msg.SettledShares)
		}
		assertBalance(t, res.Msg.SettledTotal, "30")

		bal, err := bob.groups.GetGroupBalance(ctx, connect.NewRequest(&api.GetGroupBalanceRequest{GroupID: groupID}))
		if err != nil {
			t.Fatalf("GetGroupBalance failed: %v", err)
		}
		assertBalance(t, bal.Msg.Balance, "0")

		list, err := carol.expense.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{GroupID: &groupID}))
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(list.Msg.Settlements) != 1 {
			t.Fatalf("expected 1 settlement, got %d", len(list.Msg.Settlements))
		}
		if st := list.Msg.Settlements[0]; st.FromUsername != "bob" || st.ToUsername != "alice" {
			t.Errorf("unexpected settlement: %+v", st)
		}

		_, err = mallory.expense.Settle(ctx, connect.NewRequest(&api.SettleRequest{GroupID: &groupID, ToUserID: alice.id, Amount: d("5")}))
		assertCode(t, err, connect.CodePermissionDenied)
		_, err = bob.expense.Settle(ctx, connect.NewRequest(&api.SettleRequest{GroupID: &groupID, ToUserID: alice.id, Amount: d("0")}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("delete", func(t *testing.T) {
		if _, err := alice.expense.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: dinnerID})); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		_, err := alice.expense.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: dinnerID}))
		assertCode(t, err, connect.CodeNotFound)
	})
}

func TestDirectExpenseFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice")
	bob := srv.register(t, "bob", connect.WithCodec(api.CBORCodec{}))
	carol := srv.register(t, "carol")

	if _, err := alice.users.AddFriend(ctx, connect.NewRequest(&api.AddFriendRequest{FriendID: bob.id})); err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}

	t.Run("direct expenses need a friendship", func(t *testing.T) {
		_, err := alice.expense.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			Amount:         d("10"),
			Description:    "Coffee",
			SplitEvenly:    true,
			ParticipantIDs: []int64{alice.id, carol.id},
		}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	// bob speaks CBOR; the server answers in kind.
	if _, err := bob.expense.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		Amount:      d("40.50"),
		Description: "Groceries",
		Shares: []api.ShareInput{
			{UserID: bob.id, Amount: decimal.RequireFromString("20.25")},
			{UserID: alice.id, Amount: decimal.RequireFromString("20.25")},
		},
	})); err != nil {
		t.Fatalf("CreateExpense over CBOR failed: %v", err)
	}

	friends, err := alice.users.ListFriendBalances(ctx, connect.NewRequest(&api.ListFriendBalancesRequest{}))
	if err != nil {
		t.Fatalf("ListFriendBalances failed: %v", err)
	}
	if len(friends.Msg.Friends) != 1 {
		t.Fatalf("expected 1 friend, got %d", len(friends.Msg.Friends))
	}
	assertBalance(t, friends.Msg.Friends[0].Balance, "-20.25")

	bal, err := bob.users.GetFriendBalance(ctx, connect.NewRequest(&api.GetFriendBalanceRequest{FriendID: alice.id}))
	if err != nil {
		t.Fatalf("GetFriendBalance failed: %v", err)
	}
	assertBalance(t, bal.Msg.Balance, "20.25")

	list, err := alice.expense.ListExpensesWithUser(ctx, connect.NewRequest(&api.ListExpensesWithUserRequest{UserID: bob.id}))
	if err != nil {
		t.Fatalf("ListExpensesWithUser failed: %v", err)
	}
	if len(list.Msg.Expenses) != 1 || list.Msg.Expenses[0].GroupID != nil || list.Msg.Expenses[0].GroupName != nil {
		t.Fatalf("unexpected direct expenses: %+v", list.Msg.Expenses)
	}

	if _, err := alice.expense.Settle(ctx, connect.NewRequest(&api.SettleRequest{ToUserID: bob.id, Amount: d("20.25")})); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	bal, err = bob.users.GetFriendBalance(ctx, connect.NewRequest(&api.GetFriendBalanceRequest{FriendID: alice.id}))
	if err != nil {
		t.Fatalf("GetFriendBalance failed: %v", err)
	}
	assertBalance(t, bal.Msg.Balance, "0")

	settlements, err := bob.expense.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{}))
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(settlements.Msg.Settlements) != 1 || settlements.Msg.Settlements[0].GroupID != nil {
		t.Fatalf("unexpected settlements: %+v", settlements.Msg.Settlements)
	}
}

var (
	errValidation   = apperr.Validation("bad input")
	errUnauthorized = apperr.Unauthorized("not a member of this group")
	errNotFound     = apperr.NotFound("expense not found")
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    connect.Code
		message string
	}{
		{"validation", errValidation, connect.CodeInvalidArgument, "bad input"},
		{"unauthorized", errUnauthorized, connect.CodePermissionDenied, "not a member of this group"},
		{"not found", errNotFound, connect.CodeNotFound, "expense not found"},
		{"unclassified", errors.New("disk on fire"), connect.CodeInternal, "server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toConnectError("Test", tt.err)
			if got := connect.CodeOf(err); got != tt.want {
				t.Errorf("expected code %v, got %v", tt.want, got)
			}
			var cerr *connect.Error
			if !errors.As(err, &cerr) || cerr.Message() != tt.message {
				t.Errorf("expected message %q, got %v", tt.message, err)
			}
		})
	}
}
