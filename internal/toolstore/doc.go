// Package toolstore provides a client for the Tool Store Developer API.
//
// The Tool Store is the host platform that activates this tool for a
// user. It owns three narrow surfaces this client consumes:
//
//   - Tool user data: a per-user JSON document holding, among other
//     things, the OAuth credential record under the "oauth" section.
//     The client implements auth.CredentialStore on top of it.
//   - Token endpoint: exchanges a stored refresh token for a fresh
//     access token. The client implements auth.TokenEndpoint; when no
//     endpoint is configured, refresh is simply unavailable.
//   - File storage: presigned-URL upload and download used by the
//     contact export/import pipeline.
//
// All requests authenticate with the host-injected user JWT. The client
// never implements the host's authentication protocol itself.
package toolstore
