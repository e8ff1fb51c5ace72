// Package cli implements the command-line interface for bref-boxscores.
//
// The cli package provides the Cobra-based CLI: scrape runs the full
// season → month → box score pipeline into CSV or XLSX files, parse assembles
// and checks one saved box-score page offline, and links lists the links a
// saved page yields. Configuration comes from the config package and is
// overridden by flags.
package cli
