// Package migrator manages the schema version of a database.
//
// Features:
//   - A Registry defines the linear history of schema versions, mapping
//     release strings (e.g. "4.4.2") to ordinals and ordinals to the canonical
//     set of schema objects that must exist at that version.
//   - The current version of a database is tracked in a ledger table, which
//     keeps a record of every version the database was migrated to.
//   - Databases are moved forward or backward one version at a time, each step
//     running in a single transaction together with its ledger record.
//   - Verification compares the live schema against the expected one, and
//     reports missing and unexpected objects.
package migrator
