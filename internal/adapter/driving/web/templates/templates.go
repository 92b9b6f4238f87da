// Package templates holds the page layout and the form components shared by
// every view. The _templ.go files are generated from the .templ sources with
// templ generate, run from the module root.
package templates

// CSRFFieldName is the form field that carries the double-submit token.
const CSRFFieldName = "csrf_token"
