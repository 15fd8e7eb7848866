package kind

// DefaultKinds returns the kinds seeded into a fresh database.
//
// Comments stay out of the lifecycle: they are removed outright by their
// owning records.
func DefaultKinds() []Kind {
	return []Kind{
		{
			ID:        "article",
			Label:     "Article",
			Lifecycle: true,
		},
		{
			ID:        "page",
			Label:     "Basic page",
			Lifecycle: true,
		},
		{
			ID:        "comment",
			Label:     "Comment",
			Lifecycle: false,
		},
	}
}
