// Package database provides SQLite-based persistence for completed
// audits. Storing audit history locally lets runs be compared over time
// without re-crawling the site.
//
// The database lives in the XDG data directory by default and uses
// modernc.org/sqlite, a pure-Go driver, so no cgo toolchain is needed.
package database
