package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/pkg/api"
)

const (
	GroupServiceCreateGroupProcedure      = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure         = "/" + GroupServiceName + "/GetGroup"
	GroupServiceAddGroupMemberProcedure   = "/" + GroupServiceName + "/AddGroupMember"
	GroupServiceListGroupMembersProcedure = "/" + GroupServiceName + "/ListGroupMembers"
	GroupServiceListGroupsProcedure       = "/" + GroupServiceName + "/ListGroups"
	GroupServiceGetGroupBalanceProcedure  = "/" + GroupServiceName + "/GetGroupBalance"
	GroupServiceGetGroupBalancesProcedure = "/" + GroupServiceName + "/GetGroupBalances"
)

// GroupServiceHandler is implemented by the server.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	AddGroupMember(context.Context, *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.Empty], error)
	ListGroupMembers(context.Context, *connect.Request[api.ListGroupMembersRequest]) (*connect.Response[api.ListGroupMembersResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	GetGroupBalance(context.Context, *connect.Request[api.GetGroupBalanceRequest]) (*connect.Response[api.GetGroupBalanceResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewGroupServiceHandler returns the path prefix and handler for svc.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return "/" + GroupServiceName + "/", router{
		GroupServiceCreateGroupProcedure:      unary(GroupServiceCreateGroupProcedure, svc.CreateGroup, o),
		GroupServiceGetGroupProcedure:         unary(GroupServiceGetGroupProcedure, svc.GetGroup, o),
		GroupServiceAddGroupMemberProcedure:   unary(GroupServiceAddGroupMemberProcedure, svc.AddGroupMember, o),
		GroupServiceListGroupMembersProcedure: unary(GroupServiceListGroupMembersProcedure, svc.ListGroupMembers, o),
		GroupServiceListGroupsProcedure:       unary(GroupServiceListGroupsProcedure, svc.ListGroups, o),
		GroupServiceGetGroupBalanceProcedure:  unary(GroupServiceGetGroupBalanceProcedure, svc.GetGroupBalance, o),
		GroupServiceGetGroupBalancesProcedure: unary(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, o),
	}
}

// GroupServiceClient calls the GroupService.
type GroupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup         *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	addGroupMember   *connect.Client[api.AddGroupMemberRequest, api.Empty]
	listGroupMembers *connect.Client[api.ListGroupMembersRequest, api.ListGroupMembersResponse]
	listGroups       *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	getGroupBalance  *connect.Client[api.GetGroupBalanceRequest, api.GetGroupBalanceResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
}

// NewGroupServiceClient creates a client for the service at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	o := clientOptions(opts)
	return &GroupServiceClient{
		createGroup:      newClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, o),
		getGroup:         newClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, o),
		addGroupMember:   newClient[api.AddGroupMemberRequest, api.Empty](httpClient, baseURL, GroupServiceAddGroupMemberProcedure, o),
		listGroupMembers: newClient[api.ListGroupMembersRequest, api.ListGroupMembersResponse](httpClient, baseURL, GroupServiceListGroupMembersProcedure, o),
		listGroups:       newClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, o),
		getGroupBalance:  newClient[api.GetGroupBalanceRequest, api.GetGroupBalanceResponse](httpClient, baseURL, GroupServiceGetGroupBalanceProcedure, o),
		getGroupBalances: newClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL, GroupServiceGetGroupBalancesProcedure, o),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return call(ctx, c.createGroup, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return call(ctx, c.getGroup, req)
}

func (c *GroupServiceClient) AddGroupMember(ctx context.Context, req *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.Empty], error) {
	return call(ctx, c.addGroupMember, req)
}

func (c *GroupServiceClient) ListGroupMembers(ctx context.Context, req *connect.Request[api.ListGroupMembersRequest]) (*connect.Response[api.ListGroupMembersResponse], error) {
	return call(ctx, c.listGroupMembers, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return call(ctx, c.listGroups, req)
}

func (c *GroupServiceClient) GetGroupBalance(ctx context.Context, req *connect.Request[api.GetGroupBalanceRequest]) (*connect.Response[api.GetGroupBalanceResponse], error) {
	return call(ctx, c.getGroupBalance, req)
}

func (c *GroupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return call(ctx, c.getGroupBalances, req)
}
