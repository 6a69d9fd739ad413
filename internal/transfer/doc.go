// Package transfer implements bulk contact import and export.
//
// Contacts move in two directions:
//   - Export: the full contact set is serialized to CSV or vCard and
//     uploaded to host storage, returning a shareable download URL.
//   - Import: a CSV or vCard file is fetched from a URL, decoded, and
//     each entry is applied. Entries carrying a known contact resource
//     name update that contact; the rest are created new, so
//     re-importing an export never duplicates.
//
// Imports are partial-failure tolerant: one malformed or rejected entry
// never aborts the run. Every entry ends up counted in the summary as
// created, updated, skipped (over the limit), or failed with a reason.
//
// The CSV column layout and the vCard property mapping round-trip: a
// file produced by Export decodes back to equivalent records, with the
// contact resource name carried in the resource_name column (CSV) or
// the UID property (vCard), which is what lets a later import address
// the same remote contacts.
package transfer
