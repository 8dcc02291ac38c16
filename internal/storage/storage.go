package storage

// Document abstracts whole-document persistence of a small dataset.
// Load decodes the stored document into v and leaves v untouched when the
// document is empty. Save replaces the stored document with v.
// Implementations must be safe for concurrent use.
type Document interface {
	Load(v any) error
	Save(v any) error
}
