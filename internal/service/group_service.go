package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/internal/access"
	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/pkg/api"
)

// GroupStore is the storage the group service reads and writes.
type GroupStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateGroup(ctx context.Context, group *models.Group, memberIDs []int64) error
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)
	AddGroupMember(ctx context.Context, groupID, userID int64) error
	ListGroupMembers(ctx context.Context, groupID int64) ([]models.UserRef, error)
}

// GroupService implements the Connect GroupService
type GroupService struct {
	store GroupStore
	guard *access.Guard
	calc  *calculator.Calculator
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store GroupStore, guard *access.Guard, calc *calculator.Calculator) *GroupService {
	return &GroupService{store: store, guard: guard, calc: calc}
}

// CreateGroup creates a new group. The caller becomes its creator and first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, toConnectError("CreateGroup", apperr.Validation("group name is required"))
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		CreatedBy:   userID,
	}
	if err := s.store.CreateGroup(ctx, group, req.Msg.MemberIDs); err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group and its members. Members only.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireGroupMember(ctx, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError("GetGroup", err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	members, err := s.store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	return connect.NewResponse(&api.GetGroupResponse{
		Group:   toAPIGroup(group),
		Members: toAPIUserRefs(members),
	}), nil
}

// AddGroupMember adds a user to a group the caller belongs to.
func (s *GroupService) AddGroupMember(ctx context.Context, req *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.UserID <= 0 {
		return nil, toConnectError("AddGroupMember", apperr.Validation("user_id is required"))
	}
	if err := s.guard.RequireGroupMember(ctx, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError("AddGroupMember", err)
	}
	if _, err := s.store.GetUserByID(ctx, req.Msg.UserID); err != nil {
		return nil, toConnectError("AddGroupMember", err)
	}
	if err := s.store.AddGroupMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		return nil, toConnectError("AddGroupMember", err)
	}

	slog.Info("Group member added", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "added_by", userID)
	return connect.NewResponse(&api.Empty{}), nil
}

func (s *GroupService) ListGroupMembers(ctx context.Context, req *connect.Request[api.ListGroupMembersRequest]) (*connect.Response[api.ListGroupMembersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireGroupMember(ctx, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError("ListGroupMembers", err)
	}
	members, err := s.store.ListGroupMembers(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListGroupMembers", err)
	}
	return connect.NewResponse(&api.ListGroupMembersResponse{Members: toAPIUserRefs(members)}), nil
}

// ListGroups returns the caller's groups, each with the caller's balance in it.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.calc.ListGroupsWithBalances(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListGroups", err)
	}

	out := make([]api.GroupBalance, len(groups))
	for i, g := range groups {
		out[i] = api.GroupBalance{
			Group:       toAPIGroup(&g.Group),
			MemberCount: g.MemberCount,
			Balance:     g.Balance,
		}
	}
	slog.Info("ListGroups successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// GetGroupBalance returns the caller's net balance in the group.
func (s *GroupService) GetGroupBalance(ctx context.Context, req *connect.Request[api.GetGroupBalanceRequest]) (*connect.Response[api.GetGroupBalanceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := s.calc.GroupBalance(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError("GetGroupBalance", err)
	}
	return connect.NewResponse(&api.GetGroupBalanceResponse{Balance: balance}), nil
}

// GetGroupBalances returns every member's net balance and the simplified
// payments that would settle the group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	sheet, err := s.calc.GroupBalances(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError("GetGroupBalances", err)
	}

	slog.Info("GetGroupBalances successful",
		"group_id", req.Msg.GroupID,
		"members_count", len(sheet.Members),
		"debts_count", len(sheet.Debts),
	)
	return connect.NewResponse(toAPISheet(sheet)), nil
}
