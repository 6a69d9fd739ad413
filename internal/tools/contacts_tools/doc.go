// Package contacts_tools provides MCP tools for managing Google Contacts.
//
// # Available Tools
//
// Read-only:
//   - search_contacts: Search contacts by text query with pagination
//   - get_contact_details: Get the full record for one contact
//   - get_todays_birthdays: List contacts whose birthday is today
//
// Write (registered unless the server runs read-only):
//   - create_contact: Create a new contact with optional fields and photo
//   - update_contact: Partially update a contact; omitted fields are
//     left unchanged, and passing the literal value "__clear__" empties
//     a field
//   - delete_contact: Delete a contact by resource name
//
// # Authentication
//
// Credentials come from the host platform. When the stored credential
// cannot be refreshed, tools return an error telling the user to re-run
// the tool activation flow.
package contacts_tools
