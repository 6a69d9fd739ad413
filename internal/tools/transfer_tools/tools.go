package transfer_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/contactkeeper/internal/server"
	"github.com/teemow/contactkeeper/internal/tools/common"
	"github.com/teemow/contactkeeper/internal/transfer"
)

// RegisterTransferTools registers import/export tools with the MCP server
func RegisterTransferTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerExportTool(s, sc, "export_contacts", transfer.FormatCSV,
		"Export all contacts to CSV and upload to host storage. Returns storage metadata including a download URL.")
	registerExportTool(s, sc, "export_contacts_vcf", transfer.FormatVCF,
		"Export all contacts to a vCard 4.0 file and upload to host storage. Returns storage metadata including a download URL.")

	if !readOnly {
		registerImportTool(s, sc)
	}
	return nil
}

func registerExportTool(s *mcpserver.MCPServer, sc *server.ServerContext, name string, format transfer.Format, description string) {
	tool := mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("file_name",
			mcp.Description("Target file name in host storage (defaults to a timestamped name)"),
		),
	)

	s.AddTool(tool, common.Instrumented(name, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		fileName, _ := common.StringArg(args, "file_name")

		pipeline, err := sc.TransferPipeline(ctx)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		result, err := pipeline.Export(ctx, format, fileName)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(result), nil
	}))
}

func registerImportTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("import_contacts_vcf",
		mcp.WithDescription("Import contacts from a vCard or CSV file. Provide exactly one of file_url or storage_file_name. Entries carrying a contact resource name (vCard UID or CSV resource_name column) update that contact; the rest are created new. A failing entry does not abort the rest."),
		mcp.WithString("file_url",
			mcp.Description("Publicly accessible URL of the file to import"),
		),
		mcp.WithString("storage_file_name",
			mcp.Description("File name in host storage; the server resolves a download URL"),
		),
		mcp.WithString("format",
			mcp.Description("File format: vcf or csv (detected from the file when omitted)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to import; entries beyond it are skipped"),
		),
	)

	s.AddTool(tool, common.Instrumented("import_contacts_vcf", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		fileURL, hasURL := common.StringArg(args, "file_url")
		storageName, hasStorage := common.StringArg(args, "storage_file_name")
		if hasURL == hasStorage {
			return mcp.NewToolResultError("provide exactly one of file_url or storage_file_name"), nil
		}

		var format transfer.Format
		if raw, ok := common.StringArg(args, "format"); ok {
			parsed, err := transfer.ParseFormat(raw)
			if err != nil {
				return common.ErrorResult(err), nil
			}
			format = parsed
		}
		limit, _ := common.IntArg(args, "limit")

		if hasStorage {
			resolved, err := sc.Store().DownloadURL(ctx, storageName)
			if err != nil {
				return common.ErrorResult(err), nil
			}
			fileURL = resolved
		}

		pipeline, err := sc.TransferPipeline(ctx)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		summary, err := pipeline.Import(ctx, fileURL, format, limit)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(summary), nil
	}))
}
