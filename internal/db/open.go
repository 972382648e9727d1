package db

import "context"

// Open selects a store from configuration: PostgreSQL when databaseURL is set,
// otherwise SQLite when sqlitePath is set. It returns nil, nil when neither is
// configured and documents are not persisted.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	switch {
	case databaseURL != "":
		database, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return database, nil
	case sqlitePath != "":
		s, err := OpenSQLite(sqlitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}
