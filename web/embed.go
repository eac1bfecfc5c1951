// Package web holds the front-end page served at the site root.
package web

import _ "embed"

//go:embed index.html
var index []byte

// Index returns the contents of index.html.
func Index() []byte {
	return index
}
