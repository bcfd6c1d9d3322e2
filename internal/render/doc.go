// Package render fetches fully rendered page HTML through a headless
// Chromium instance so that client-side markup (JSON-LD injected by tag
// managers, lazy navigation menus) is visible to the analyzers.
package render
