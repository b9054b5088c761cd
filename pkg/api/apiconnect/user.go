package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/pkg/api"
)

const (
	UserServiceGetUserProcedure            = "/" + UserServiceName + "/GetUser"
	UserServiceListUsersProcedure          = "/" + UserServiceName + "/ListUsers"
	UserServiceSearchUsersProcedure        = "/" + UserServiceName + "/SearchUsers"
	UserServiceFindUserByEmailProcedure    = "/" + UserServiceName + "/FindUserByEmail"
	UserServiceUpdateProfileProcedure      = "/" + UserServiceName + "/UpdateProfile"
	UserServiceAddFriendProcedure          = "/" + UserServiceName + "/AddFriend"
	UserServiceRemoveFriendProcedure       = "/" + UserServiceName + "/RemoveFriend"
	UserServiceListFriendsProcedure        = "/" + UserServiceName + "/ListFriends"
	UserServiceListFriendBalancesProcedure = "/" + UserServiceName + "/ListFriendBalances"
	UserServiceGetFriendBalanceProcedure   = "/" + UserServiceName + "/GetFriendBalance"
)

// UserServiceHandler is implemented by the server.
type UserServiceHandler interface {
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	SearchUsers(context.Context, *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error)
	FindUserByEmail(context.Context, *connect.Request[api.FindUserByEmailRequest]) (*connect.Response[api.FindUserByEmailResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error)
	AddFriend(context.Context, *connect.Request[api.AddFriendRequest]) (*connect.Response[api.Empty], error)
	RemoveFriend(context.Context, *connect.Request[api.RemoveFriendRequest]) (*connect.Response[api.Empty], error)
	ListFriends(context.Context, *connect.Request[api.ListFriendsRequest]) (*connect.Response[api.ListFriendsResponse], error)
	ListFriendBalances(context.Context, *connect.Request[api.ListFriendBalancesRequest]) (*connect.Response[api.ListFriendBalancesResponse], error)
	GetFriendBalance(context.Context, *connect.Request[api.GetFriendBalanceRequest]) (*connect.Response[api.GetFriendBalanceResponse], error)
}

// NewUserServiceHandler returns the path prefix and handler for svc.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return "/" + UserServiceName + "/", router{
		UserServiceGetUserProcedure:            unary(UserServiceGetUserProcedure, svc.GetUser, o),
		UserServiceListUsersProcedure:          unary(UserServiceListUsersProcedure, svc.ListUsers, o),
		UserServiceSearchUsersProcedure:        unary(UserServiceSearchUsersProcedure, svc.SearchUsers, o),
		UserServiceFindUserByEmailProcedure:    unary(UserServiceFindUserByEmailProcedure, svc.FindUserByEmail, o),
		UserServiceUpdateProfileProcedure:      unary(UserServiceUpdateProfileProcedure, svc.UpdateProfile, o),
		UserServiceAddFriendProcedure:          unary(UserServiceAddFriendProcedure, svc.AddFriend, o),
		UserServiceRemoveFriendProcedure:       unary(UserServiceRemoveFriendProcedure, svc.RemoveFriend, o),
		UserServiceListFriendsProcedure:        unary(UserServiceListFriendsProcedure, svc.ListFriends, o),
		UserServiceListFriendBalancesProcedure: unary(UserServiceListFriendBalancesProcedure, svc.ListFriendBalances, o),
		UserServiceGetFriendBalanceProcedure:   unary(UserServiceGetFriendBalanceProcedure, svc.GetFriendBalance, o),
	}
}

// UserServiceClient calls the UserService.
type UserServiceClient struct {
	getUser            *connect.Client[api.GetUserRequest, api.GetUserResponse]
	listUsers          *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	searchUsers        *connect.Client[api.SearchUsersRequest, api.SearchUsersResponse]
	findUserByEmail    *connect.Client[api.FindUserByEmailRequest, api.FindUserByEmailResponse]
	updateProfile      *connect.Client[api.UpdateProfileRequest, api.UpdateProfileResponse]
	addFriend          *connect.Client[api.AddFriendRequest, api.Empty]
	removeFriend       *connect.Client[api.RemoveFriendRequest, api.Empty]
	listFriends        *connect.Client[api.ListFriendsRequest, api.ListFriendsResponse]
	listFriendBalances *connect.Client[api.ListFriendBalancesRequest, api.ListFriendBalancesResponse]
	getFriendBalance   *connect.Client[api.GetFriendBalanceRequest, api.GetFriendBalanceResponse]
}

// NewUserServiceClient creates a client for the service at baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *UserServiceClient {
	o := clientOptions(opts)
	return &UserServiceClient{
		getUser:            newClient[api.GetUserRequest, api.GetUserResponse](httpClient, baseURL, UserServiceGetUserProcedure, o),
		listUsers:          newClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL, UserServiceListUsersProcedure, o),
		searchUsers:        newClient[api.SearchUsersRequest, api.SearchUsersResponse](httpClient, baseURL, UserServiceSearchUsersProcedure, o),
		findUserByEmail:    newClient[api.FindUserByEmailRequest, api.FindUserByEmailResponse](httpClient, baseURL, UserServiceFindUserByEmailProcedure, o),
		updateProfile:      newClient[api.UpdateProfileRequest, api.UpdateProfileResponse](httpClient, baseURL, UserServiceUpdateProfileProcedure, o),
		addFriend:          newClient[api.AddFriendRequest, api.Empty](httpClient, baseURL, UserServiceAddFriendProcedure, o),
		removeFriend:       newClient[api.RemoveFriendRequest, api.Empty](httpClient, baseURL, UserServiceRemoveFriendProcedure, o),
		listFriends:        newClient[api.ListFriendsRequest, api.ListFriendsResponse](httpClient, baseURL, UserServiceListFriendsProcedure, o),
		listFriendBalances: newClient[api.ListFriendBalancesRequest, api.ListFriendBalancesResponse](httpClient, baseURL, UserServiceListFriendBalancesProcedure, o),
		getFriendBalance:   newClient[api.GetFriendBalanceRequest, api.GetFriendBalanceResponse](httpClient, baseURL, UserServiceGetFriendBalanceProcedure, o),
	}
}

func (c *UserServiceClient) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	return call(ctx, c.getUser, req)
}

func (c *UserServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return call(ctx, c.listUsers, req)
}

func (c *UserServiceClient) SearchUsers(ctx context.Context, req *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error) {
	return call(ctx, c.searchUsers, req)
}

func (c *UserServiceClient) FindUserByEmail(ctx context.Context, req *connect.Request[api.FindUserByEmailRequest]) (*connect.Response[api.FindUserByEmailResponse], error) {
	return call(ctx, c.findUserByEmail, req)
}

func (c *UserServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	return call(ctx, c.updateProfile, req)
}

func (c *UserServiceClient) AddFriend(ctx context.Context, req *connect.Request[api.AddFriendRequest]) (*connect.Response[api.Empty], error) {
	return call(ctx, c.addFriend, req)
}

func (c *UserServiceClient) RemoveFriend(ctx context.Context, req *connect.Request[api.RemoveFriendRequest]) (*connect.Response[api.Empty], error) {
	return call(ctx, c.removeFriend, req)
}

func (c *UserServiceClient) ListFriends(ctx context.Context, req *connect.Request[api.ListFriendsRequest]) (*connect.Response[api.ListFriendsResponse], error) {
	return call(ctx, c.listFriends, req)
}

func (c *UserServiceClient) ListFriendBalances(ctx context.Context, req *connect.Request[api.ListFriendBalancesRequest]) (*connect.Response[api.ListFriendBalancesResponse], error) {
	return call(ctx, c.listFriendBalances, req)
}

func (c *UserServiceClient) GetFriendBalance(ctx context.Context, req *connect.Request[api.GetFriendBalanceRequest]) (*connect.Response[api.GetFriendBalanceResponse], error) {
	return call(ctx, c.getFriendBalance, req)
}
