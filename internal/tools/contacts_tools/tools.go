package contacts_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/contactkeeper/internal/contacts"
	"github.com/teemow/contactkeeper/internal/server"
	"github.com/teemow/contactkeeper/internal/tools/common"
)

const clearHint = "Pass the literal value \"__clear__\" to empty this field."

// RegisterContactsTools registers all contact management tools with the MCP server
func RegisterContactsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	searchTool := mcp.NewTool("search_contacts",
		mcp.WithDescription("Search contacts by text query over names, emails, and phone numbers. Returns one page of matches plus a page token for the next page, if any."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text search query"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum results per page (default 25, capped at 30)"),
		),
		mcp.WithString("page_token",
			mcp.Description("Opaque token from a previous page's nextPageToken"),
		),
	)

	s.AddTool(searchTool, common.Instrumented("search_contacts", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		query, ok := common.StringArg(args, "query")
		if !ok {
			return mcp.NewToolResultError("query is required"), nil
		}
		pageSize, _ := common.IntArg(args, "page_size")
		pageToken, _ := common.StringArg(args, "page_token")

		client, err := sc.ContactsClient(ctx)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		page, err := client.Search(ctx, query, pageSize, pageToken)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(page), nil
	}))

	getTool := mcp.NewTool("get_contact_details",
		mcp.WithDescription("Get full details for the specified contact resource name"),
		mcp.WithString("resource_name",
			mcp.Required(),
			mcp.Description("The contact resource name, e.g. people/c123"),
		),
	)

	s.AddTool(getTool, common.Instrumented("get_contact_details", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		resourceName, ok := common.StringArg(args, "resource_name")
		if !ok {
			return mcp.NewToolResultError("resource_name is required"), nil
		}

		client, err := sc.ContactsClient(ctx)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		record, err := client.Get(ctx, resourceName)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(record), nil
	}))

	birthdaysTool := mcp.NewTool("get_todays_birthdays",
		mcp.WithDescription("Return contacts whose birthday is today (month and day, year ignored)"),
	)

	s.AddTool(birthdaysTool, common.Instrumented("get_todays_birthdays", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.ContactsClient(ctx)
		if err != nil {
			return common.ErrorResult(err), nil
		}

		today := time.Now().UTC()
		matches, err := client.BirthdaysOn(ctx, int(today.Month()), today.Day())
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(map[string]interface{}{
			"count":    len(matches),
			"contacts": matches,
		}), nil
	}))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createTool := mcp.NewTool("create_contact",
		mcp.WithDescription("Create a new contact with optional fields and photo"),
		mcp.WithString("given_name", mcp.Description("First name")),
		mcp.WithString("family_name", mcp.Description("Last name")),
		mcp.WithString("email", mcp.Description("Email address")),
		mcp.WithString("phone", mcp.Description("Phone number")),
		mcp.WithString("birthday", mcp.Description("Birthday as yyyy-mm-dd, or --mm-dd when the year is unknown")),
		mcp.WithString("photo_url", mcp.Description("Publicly reachable URL of a photo to set")),
		mcp.WithString("note", mcp.Description("Free-text note")),
	)

	s.AddTool(createTool, common.Instrumented("create_contact", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		record := contacts.Record{}
		record.GivenName, _ = common.StringArg(args, "given_name")
		record.FamilyName, _ = common.StringArg(args, "family_name")
		if email, ok := common.StringArg(args, "email"); ok {
			record.Emails = []string{email}
		}
		if phone, ok := common.StringArg(args, "phone"); ok {
			record.Phones = []string{phone}
		}
		if raw, ok := common.StringArg(args, "birthday"); ok {
			birthday, err := contacts.ParseBirthday(raw)
			if err != nil {
				return common.ErrorResult(err), nil
			}
			record.Birthday = &birthday
		}
		record.PhotoURL, _ = common.StringArg(args, "photo_url")
		record.Note, _ = common.StringArg(args, "note")

		if record.DisplayName() == "" && len(record.Emails) == 0 && len(record.Phones) == 0 {
			return mcp.NewToolResultError("provide at least one of given_name, family_name, email, or phone"), nil
		}

		client, err := sc.ContactsClient(ctx)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		created, err := client.Create(ctx, record)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(created), nil
	}))

	updateTool := mcp.NewTool("update_contact",
		mcp.WithDescription("Update selected fields for a contact. Fields not provided are left unchanged. "+clearHint),
		mcp.WithString("resource_name",
			mcp.Required(),
			mcp.Description("The contact resource name, e.g. people/c123"),
		),
		mcp.WithString("given_name", mcp.Description("New first name. "+clearHint)),
		mcp.WithString("family_name", mcp.Description("New last name. "+clearHint)),
		mcp.WithString("email", mcp.Description("New email address, replacing all existing ones. "+clearHint)),
		mcp.WithString("phone", mcp.Description("New phone number, replacing all existing ones. "+clearHint)),
		mcp.WithString("birthday", mcp.Description("New birthday as yyyy-mm-dd or --mm-dd. "+clearHint)),
		mcp.WithString("photo_url", mcp.Description("URL of a new photo. "+clearHint)),
		mcp.WithString("note", mcp.Description("New note text. "+clearHint)),
	)

	s.AddTool(updateTool, common.Instrumented("update_contact", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		resourceName, ok := common.StringArg(args, "resource_name")
		if !ok {
			return mcp.NewToolResultError("resource_name is required"), nil
		}

		update, err := updateFromArgs(args)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		if update.IsEmpty() {
			return mcp.NewToolResultError("no fields to update; provide at least one field"), nil
		}

		client, err := sc.ContactsClient(ctx)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		updated, err := client.Update(ctx, resourceName, update)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(updated), nil
	}))

	deleteTool := mcp.NewTool("delete_contact",
		mcp.WithDescription("Delete a contact by resource name. Deleting an already-deleted contact succeeds."),
		mcp.WithString("resource_name",
			mcp.Required(),
			mcp.Description("The contact resource name, e.g. people/c123"),
		),
	)

	s.AddTool(deleteTool, common.Instrumented("delete_contact", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		resourceName, ok := common.StringArg(args, "resource_name")
		if !ok {
			return mcp.NewToolResultError("resource_name is required"), nil
		}

		client, err := sc.ContactsClient(ctx)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		if err := client.Delete(ctx, resourceName); err != nil {
			return common.ErrorResult(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted %s", resourceName)), nil
	}))
}

// updateFromArgs translates tool arguments into a partial update. An
// absent argument leaves the field untouched; the clear sentinel turns
// into a non-nil zero value, which the merge treats as "empty this".
func updateFromArgs(args map[string]interface{}) (contacts.Update, error) {
	var update contacts.Update

	setString := func(key string, dst **string) {
		if v, ok := common.StringArg(args, key); ok {
			if v == contacts.ClearSentinel {
				v = ""
			}
			*dst = &v
		}
	}
	setList := func(key string, dst **[]string) {
		if v, ok := common.StringArg(args, key); ok {
			values := []string{}
			if v != contacts.ClearSentinel {
				values = append(values, v)
			}
			*dst = &values
		}
	}

	setString("given_name", &update.GivenName)
	setString("family_name", &update.FamilyName)
	setList("email", &update.Emails)
	setList("phone", &update.Phones)
	setString("photo_url", &update.PhotoURL)
	setString("note", &update.Note)

	if raw, ok := common.StringArg(args, "birthday"); ok {
		if raw == contacts.ClearSentinel {
			update.Birthday = &contacts.Birthday{}
		} else {
			birthday, err := contacts.ParseBirthday(raw)
			if err != nil {
				return contacts.Update{}, err
			}
			update.Birthday = &birthday
		}
	}
	return update, nil
}
