// Package shell implements the interactive note terminal.
//
// Lines starting with "/" are commands; any other line is appended to the
// landing note with a timestamp. Selecting a note switches to note mode,
// where every line is appended to that note until "/quit".
//
// Input is read by a single goroutine and delivered over a channel so the
// loop can return as soon as its context is cancelled.
package shell
