// Package inmemdb keeps repositories in process memory; used by tests and throwaway servers.
package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-admin/core/user"
)

type (
	DB struct {
		user *userTable
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
	}
}
