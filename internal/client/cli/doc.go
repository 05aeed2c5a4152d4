// Package cli is the bea command-line client.
//
// Run with a command for a one-shot call ("bea upload book.pdf") or without
// one for an interactive prompt. Commands:
//
//	register             create an account (email, password, optional role)
//	login                sign in; the session is saved under the session dir
//	upload <file>        sign, PUT the bytes to storage, then confirm
//	list                 list ready e-books
//	view <objectPath>    print a short-lived view URL
//	logout               forget the saved session
package cli
