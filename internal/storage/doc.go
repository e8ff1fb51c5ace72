// Package storage writes assembled month tables to disk.
//
// Each (season, period) pair becomes one file at {dir}/{year}/{period}.csv or
// {dir}/{year}/{period}.xlsx. Existing files are replaced.
package storage
