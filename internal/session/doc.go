// Package session tracks the images a client has registered, grouped into
// sessions, together with each image's last detection and its manual edit
// log.
//
// Session and image ids are random UUIDs. State lives in memory only.
package session
