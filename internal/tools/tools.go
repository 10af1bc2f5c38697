// Package tools defines the MCP tool surface over the expense service.
//
// Each tool handler maps the named call and its typed arguments onto one
// service operation and serializes the structured result as JSON text.
// Business outcomes ("not found", "no fields to update") come back as
// status/error payloads; store and file failures are returned as Go errors so
// the protocol layer reports a generic call failure.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"expensed/internal/core"
	"expensed/internal/services"
	"expensed/internal/taxonomy"
)

const (
	statusOK    = "ok"
	statusError = "error"

	msgExpenseNotFound  = "Expense not found"
	msgNoFieldsToUpdate = "No fields to update"
)

type (
	addResult struct {
		Status string `json:"status"`
		ID     int64  `json:"id"`
	}

	deleteResult struct {
		Status    string `json:"status"`
		DeletedID int64  `json:"deleted_id"`
	}

	updateResult struct {
		Status    string `json:"status"`
		UpdatedID int64  `json:"updated_id"`
	}

	errorResult struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
)

// ExpenseTools holds the dependencies shared by the tool handlers.
type ExpenseTools struct {
	service *services.ExpenseService
}

// Register adds the expense tools and the categories resource to the server.
func Register(s *server.MCPServer, svc *services.ExpenseService, tax *taxonomy.Reader) {
	t := &ExpenseTools{service: svc}

	s.AddTool(addExpenseTool(), t.handleAddExpense)
	s.AddTool(listExpensesTool(), t.handleListExpenses)
	s.AddTool(summarizeTool(), t.handleSummarize)
	s.AddTool(deleteExpenseTool(), t.handleDeleteExpense)
	s.AddTool(editExpenseTool(), t.handleEditExpense)

	registerCategoriesResource(s, tax)
}

func addExpenseTool() mcp.Tool {
	return mcp.NewTool("add_expense",
		mcp.WithDescription("Add a new expense entry to the store."),
		mcp.WithString("date", mcp.Required(),
			mcp.Description("Expense date as a sortable string, e.g. 2024-01-05. Dates are compared as text, so use one consistent format.")),
		mcp.WithNumber("amount", mcp.Required(),
			mcp.Description("Monetary amount.")),
		mcp.WithString("category", mcp.Required(),
			mcp.Description("Expense category.")),
		mcp.WithString("subcategory",
			mcp.Description("Optional subcategory.")),
		mcp.WithString("note",
			mcp.Description("Optional free-form note.")),
		mcp.WithString("paid_by",
			mcp.Description("Optional payer.")),
	)
}

func (t *ExpenseTools) handleAddExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	date, err := requireString(args, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	amount, err := requireNumber(args, "amount")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := requireString(args, "category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec := core.ExpenseRecord{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Subcategory: optionalString(args, "subcategory"),
		Note:        optionalString(args, "note"),
		PaidBy:      optionalString(args, "paid_by"),
	}

	id, err := t.service.CreateExpense(ctx, rec)
	if err != nil {
		if errors.Is(err, core.ErrEmptyDate) || errors.Is(err, core.ErrEmptyCategory) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	return jsonResult(addResult{Status: statusOK, ID: id})
}

func listExpensesTool() mcp.Tool {
	return mcp.NewTool("list_expenses",
		mcp.WithDescription("List expense entries within an inclusive date range, in insertion order."),
		mcp.WithString("start_date", mcp.Required(),
			mcp.Description("Inclusive lower date bound.")),
		mcp.WithString("end_date", mcp.Required(),
			mcp.Description("Inclusive upper date bound.")),
	)
}

func (t *ExpenseTools) handleListExpenses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	start, err := requireString(args, "start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := requireString(args, "end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	expenses, err := t.service.ListExpenses(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return jsonResult(expenses)
}

func summarizeTool() mcp.Tool {
	return mcp.NewTool("summarize",
		mcp.WithDescription("Sum expense amounts by category within an inclusive date range."),
		mcp.WithString("start_date", mcp.Required(),
			mcp.Description("Inclusive lower date bound.")),
		mcp.WithString("end_date", mcp.Required(),
			mcp.Description("Inclusive upper date bound.")),
		mcp.WithString("category",
			mcp.Description("Optional category filter; omit for all categories.")),
	)
}

func (t *ExpenseTools) handleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	start, err := requireString(args, "start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := requireString(args, "end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	totals, err := t.service.Summarize(ctx, start, end, optionalString(args, "category"))
	if err != nil {
		return nil, err
	}

	return jsonResult(totals)
}

func deleteExpenseTool() mcp.Tool {
	return mcp.NewTool("delete_expense",
		mcp.WithDescription("Delete an expense entry by id."),
		mcp.WithNumber("expense_id", mcp.Required(),
			mcp.Description("Id of the expense to delete.")),
	)
}

func (t *ExpenseTools) handleDeleteExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req.GetArguments(), "expense_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.service.DeleteExpense(ctx, id); err != nil {
		if errors.Is(err, core.ErrExpenseNotFound) {
			return jsonResult(errorResult{Status: statusError, Message: msgExpenseNotFound})
		}
		return nil, err
	}

	return jsonResult(deleteResult{Status: statusOK, DeletedID: id})
}

func editExpenseTool() mcp.Tool {
	return mcp.NewTool("edit_expense",
		mcp.WithDescription("Edit an expense entry by id. Only the supplied fields change; omitted fields keep their stored values."),
		mcp.WithNumber("expense_id", mcp.Required(),
			mcp.Description("Id of the expense to edit.")),
		mcp.WithString("date", mcp.Description("New date string.")),
		mcp.WithNumber("amount", mcp.Description("New amount; an explicit 0 is applied.")),
		mcp.WithString("category", mcp.Description("New category.")),
		mcp.WithString("subcategory", mcp.Description("New subcategory; an explicit empty string is applied.")),
		mcp.WithString("note", mcp.Description("New note.")),
		mcp.WithString("paid_by", mcp.Description("New payer.")),
	)
}

func (t *ExpenseTools) handleEditExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	id, err := requireID(args, "expense_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Presence in the argument map decides whether a field is part of the
	// update, so an explicit zero or empty string is applied while an absent
	// key leaves the column untouched.
	var upd core.ExpenseUpdate
	if upd.Date, err = presentString(args, "date"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if upd.Amount, err = presentNumber(args, "amount"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if upd.Category, err = presentString(args, "category"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if upd.Subcategory, err = presentString(args, "subcategory"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if upd.Note, err = presentString(args, "note"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if upd.PaidBy, err = presentString(args, "paid_by"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.service.UpdateExpense(ctx, id, upd); err != nil {
		switch {
		case errors.Is(err, core.ErrNoFieldsToUpdate):
			return jsonResult(errorResult{Status: statusError, Message: msgNoFieldsToUpdate})
		case errors.Is(err, core.ErrExpenseNotFound):
			return jsonResult(errorResult{Status: statusError, Message: msgExpenseNotFound})
		default:
			return nil, err
		}
	}

	return jsonResult(updateResult{Status: statusOK, UpdatedID: id})
}

// jsonResult serializes v and wraps it as a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

// requireString extracts a mandatory string argument.
func requireString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s, nil
}

// requireNumber extracts a mandatory numeric argument (JSON numbers decode as
// float64).
func requireNumber(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}

// requireID extracts a mandatory integer id argument.
func requireID(args map[string]any, key string) (int64, error) {
	f, err := requireNumber(args, key)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// optionalString returns the argument value or "" when absent or not a string.
func optionalString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// presentString returns a pointer to the value when the key is present, nil
// when absent, and an error when present but not a string.
func presentString(args map[string]any, key string) (*string, error) {
	v, ok := args[key]
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string", key)
	}
	return &s, nil
}

// presentNumber is presentString for numeric arguments.
func presentNumber(args map[string]any, key string) (*float64, error) {
	v, ok := args[key]
	if !ok {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &f, nil
}
