// Package links discovers season, month, and box-score pages from parsed HTML.
//
// Season pages link to one page per month ("games-" in the href). Month pages
// link to one page per game, identified by the "Box Score" anchor text. The
// box-score href encodes the game date as a YYYYMMDD prefix of its final path
// segment (e.g. /boxscores/202001150BOS.html); ParseDate depends on that URL
// scheme and is the only strict-format contract with the data source.
package links
