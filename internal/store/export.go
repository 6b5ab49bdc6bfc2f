package store

import "github.com/correggi-verifiche/api/internal/model"

// ExportAll returns every stored correction with its questions, oldest
// first, for the export command.
func (s *Store) ExportAll() ([]model.CorrectionResult, error) {
	rows, err := s.db.Query(`SELECT id FROM corrections ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]model.CorrectionResult, 0, len(ids))
	for _, id := range ids {
		result, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}
