// Package connectors holds document sources.
//
// filesystem walks a local documents directory and watches it for changes.
package connectors
