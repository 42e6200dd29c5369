// Package instance projects a section model into a flat list of question
// instances (absolute path, render type, label key, validation config, enable
// condition and clinical context) and provides an indexed, read-only query
// layer over the merged list.
package instance
