// Package transfer_tools provides MCP tools for bulk contact import
// and export through host storage.
//
// # Available Tools
//
//   - export_contacts: Export all contacts to CSV, upload to host
//     storage, and return storage metadata with a download URL
//   - export_contacts_vcf: Same, in vCard 4.0 format
//   - import_contacts_vcf: Import contacts from a vCard or CSV file,
//     given either a public URL or a file name in host storage
//
// Imports tolerate partial failure: each entry is applied on its own
// and the summary reports created, updated, skipped, and failed counts.
package transfer_tools
