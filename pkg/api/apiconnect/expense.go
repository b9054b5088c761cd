package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/pkg/api"
)

const (
	ExpenseServiceCreateExpenseProcedure        = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceGetExpenseProcedure           = "/" + ExpenseServiceName + "/GetExpense"
	ExpenseServiceUpdateExpenseProcedure        = "/" + ExpenseServiceName + "/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure        = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceListGroupExpensesProcedure    = "/" + ExpenseServiceName + "/ListGroupExpenses"
	ExpenseServiceListExpensesWithUserProcedure = "/" + ExpenseServiceName + "/ListExpensesWithUser"
	ExpenseServiceSettleProcedure               = "/" + ExpenseServiceName + "/Settle"
	ExpenseServiceListSettlementsProcedure      = "/" + ExpenseServiceName + "/ListSettlements"
)

// ExpenseServiceHandler is implemented by the server.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.Empty], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.Empty], error)
	ListGroupExpenses(context.Context, *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error)
	ListExpensesWithUser(context.Context, *connect.Request[api.ListExpensesWithUserRequest]) (*connect.Response[api.ListExpensesWithUserResponse], error)
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewExpenseServiceHandler returns the path prefix and handler for svc.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return "/" + ExpenseServiceName + "/", router{
		ExpenseServiceCreateExpenseProcedure:        unary(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, o),
		ExpenseServiceGetExpenseProcedure:           unary(ExpenseServiceGetExpenseProcedure, svc.GetExpense, o),
		ExpenseServiceUpdateExpenseProcedure:        unary(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, o),
		ExpenseServiceDeleteExpenseProcedure:        unary(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, o),
		ExpenseServiceListGroupExpensesProcedure:    unary(ExpenseServiceListGroupExpensesProcedure, svc.ListGroupExpenses, o),
		ExpenseServiceListExpensesWithUserProcedure: unary(ExpenseServiceListExpensesWithUserProcedure, svc.ListExpensesWithUser, o),
		ExpenseServiceSettleProcedure:               unary(ExpenseServiceSettleProcedure, svc.Settle, o),
		ExpenseServiceListSettlementsProcedure:      unary(ExpenseServiceListSettlementsProcedure, svc.ListSettlements, o),
	}
}

// ExpenseServiceClient calls the ExpenseService.
type ExpenseServiceClient struct {
	createExpense        *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense           *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	updateExpense        *connect.Client[api.UpdateExpenseRequest, api.Empty]
	deleteExpense        *connect.Client[api.DeleteExpenseRequest, api.Empty]
	listGroupExpenses    *connect.Client[api.ListGroupExpensesRequest, api.ListGroupExpensesResponse]
	listExpensesWithUser *connect.Client[api.ListExpensesWithUserRequest, api.ListExpensesWithUserResponse]
	settle               *connect.Client[api.SettleRequest, api.SettleResponse]
	listSettlements      *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
}

// NewExpenseServiceClient creates a client for the service at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	o := clientOptions(opts)
	return &ExpenseServiceClient{
		createExpense:        newClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL, ExpenseServiceCreateExpenseProcedure, o),
		getExpense:           newClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL, ExpenseServiceGetExpenseProcedure, o),
		updateExpense:        newClient[api.UpdateExpenseRequest, api.Empty](httpClient, baseURL, ExpenseServiceUpdateExpenseProcedure, o),
		deleteExpense:        newClient[api.DeleteExpenseRequest, api.Empty](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, o),
		listGroupExpenses:    newClient[api.ListGroupExpensesRequest, api.ListGroupExpensesResponse](httpClient, baseURL, ExpenseServiceListGroupExpensesProcedure, o),
		listExpensesWithUser: newClient[api.ListExpensesWithUserRequest, api.ListExpensesWithUserResponse](httpClient, baseURL, ExpenseServiceListExpensesWithUserProcedure, o),
		settle:               newClient[api.SettleRequest, api.SettleResponse](httpClient, baseURL, ExpenseServiceSettleProcedure, o),
		listSettlements:      newClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL, ExpenseServiceListSettlementsProcedure, o),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return call(ctx, c.createExpense, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return call(ctx, c.getExpense, req)
}

func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.Empty], error) {
	return call(ctx, c.updateExpense, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.Empty], error) {
	return call(ctx, c.deleteExpense, req)
}

func (c *ExpenseServiceClient) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	return call(ctx, c.listGroupExpenses, req)
}

func (c *ExpenseServiceClient) ListExpensesWithUser(ctx context.Context, req *connect.Request[api.ListExpensesWithUserRequest]) (*connect.Response[api.ListExpensesWithUserResponse], error) {
	return call(ctx, c.listExpensesWithUser, req)
}

func (c *ExpenseServiceClient) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	return call(ctx, c.settle, req)
}

func (c *ExpenseServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return call(ctx, c.listSettlements, req)
}
