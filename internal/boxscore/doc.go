// Package boxscore turns a box-score HTML page into a per-game table of player statistics.
//
// Every table row becomes a StatRecord: a schema-less mapping from the cell's
// data-stat label to its text, plus the player name from the row's header
// cell. Records are split into two team sections at the "Team Totals" rows,
// tagged with team name, home/away, date, and a derived game id, and returned
// as a GameTable.
//
// The section boundary and the home/away order are carried by a Layout so
// that they can be redefined without touching the assembly logic.
package boxscore
