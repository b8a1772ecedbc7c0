package storage

// NotFoundError is returned when an episode doesn't exist in the store.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "episode not found"
	}

	return "episode not found: " + e.ID
}
