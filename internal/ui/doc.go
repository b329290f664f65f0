// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing issues and listening to soundtracks:
//  1. [SearchView] : Type a query with debounced suggestions and recent searches
//  2. [ResultsView] : Browse matching comic issues
//  3. [IssueView] : Browse an issue's soundtracks, vote, and start playback
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via
// per-event message structs. Playback state is polled from the [player.Controller] on a ticker and rendered
// as a persistent player bar beneath the results and issue views.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via
// charmbracelet/bubbles/help. Playback keys (space, n, p, u, d, r, +/-) are live wherever the player bar shows.
package ui
