// Package storage manages the output directory for exported event files.
//
// Paths beginning with ~/ are expanded to the user's home directory, the
// directory is created on demand, and files are written through a temporary
// file and renamed so a failed export never leaves a truncated file behind.
// The default location is ./data.
package storage
