package core

// Close closes the database connection. Further operations return
// ErrStoreClosed.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return wrapError("close", err)
	}

	return nil
}
