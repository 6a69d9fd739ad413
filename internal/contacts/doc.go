// Package contacts defines the contact record domain model shared by the
// People API client, the import/export pipeline, and the MCP tools.
//
// The package provides:
//   - Record: a flat, typed projection of a remote contact
//   - Update: a partial update where absent and cleared fields are distinct
//   - Merge: the read-then-merge step used before every remote write
//   - Birthday parsing and rendering in the yyyy-mm-dd / --mm-dd forms
//     used by the People API and the file exchange formats
//
// Records are ephemeral: they are fetched per call and never cached
// across calls. The ResourceName is assigned by the remote service on
// creation and never changes afterwards.
package contacts
