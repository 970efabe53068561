// Package notes stores titled, append-only notes in a flat directory.
//
// A note titled T lives in <digest(T)>.txt, so directory listings reveal
// nothing about titles. The file starts with a "title: T" header line and
// grows by timestamped lines. Human titles are recovered through the
// content index (package index), which the engine keeps consistent with
// the files on create and delete.
//
// Two titles are reserved: "contents" names the index record and "main"
// names the landing note opened when a session starts. Neither can be
// created or deleted by title, and neither appears in ListTitles.
package notes
