// Package normalisers turns raw file bytes into document text.
//
// Each sub-package handles one family of MIME types. Registry dispatches a
// RawDocument to the highest-priority normaliser for its MIME type.
package normalisers
