package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// SettingRepository reads company settings by key. Writes go through the
// settings handlers directly; only lookups are needed elsewhere (ticket
// header/footer).
type SettingRepository interface {
	GetValue(key string) (string, error)
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetValue(key string) (string, error) {
	var value sql.NullString
	query := `SELECT setting_value FROM company_settings WHERE setting_key = $1`
	err := r.db.QueryRow(query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting setting %q: %v", ErrDatabaseError, key, err)
	}
	if !value.Valid {
		return "", nil
	}
	return value.String, nil
}
