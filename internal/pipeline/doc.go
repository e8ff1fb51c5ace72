// Package pipeline drives a scrape from season pages down to box scores.
//
// For every configured season it fetches the season page, follows each month
// link, fetches every box score of the month, assembles the game tables,
// runs the points check over the whole month, and hands the month to a sink.
//
// Failures are collected rather than fatal. A box score that cannot be
// dated, fetched, or assembled is recorded as a DocumentError and the month
// goes on without it. A month page that cannot be fetched, a month whose
// points check errors, or a month the sink rejects is recorded as a
// MonthError. A season page that cannot be fetched is recorded as a
// SeasonError. Run returns a Summary listing all of them; only context
// cancellation stops it early.
package pipeline
