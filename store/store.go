package store // import "github.com/yomu-app/yomu/store"

import (
	"database/sql"
	"sync"
)

type Store struct {
	db                 *sql.DB
	dbLock             sync.Mutex // dbLock serializes writes, sqlite allows one writer
	UserCache          sync.Map   // map[int32]*User
	MangaCache         sync.Map   // map[string]*Manga, keyed by slug
	SystemSettingCache sync.Map   // map[string]*SystemSetting
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) DBStats() sql.DBStats {
	return s.db.Stats()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) Close() {
	//
}
