package panel

// FetchRequest asks a content manager to load path. PreviousHash is the hash
// of what the panel showed when it asked.
type FetchRequest struct {
	Path         string
	Identity     Identity
	PreviousHash uint64
}

// Response carries loaded content back to the panel that asked for it.
type Response[T any] struct {
	Content  T
	Identity Identity
}
