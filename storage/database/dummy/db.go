package dummydb

import (
	"sync"

	"github.com/darasa-tz/darasa/core/assignment"
	"github.com/darasa-tz/darasa/core/billing"
	"github.com/darasa-tz/darasa/core/submission"
	"github.com/darasa-tz/darasa/core/tool"
	"github.com/darasa-tz/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		billing    *billingTables
		assignment *assignmentTable
		submission *submissionTable
		tool       *toolTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	// payments and balances share one lock so settlement stays atomic
	billingTables struct {
		sync.RWMutex
		payments map[string]*billing.Payment
		balances map[string]int
	}

	assignmentTable struct {
		sync.RWMutex
		table []assignment.Template
	}

	submissionTable struct {
		sync.RWMutex
		table []submission.Entry
	}

	toolTable struct {
		sync.RWMutex
		table map[string]*tool.Tool
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		billing: &billingTables{
			payments: make(map[string]*billing.Payment),
			balances: make(map[string]int),
		},
		assignment: &assignmentTable{},
		submission: &submissionTable{},
		tool:       &toolTable{table: make(map[string]*tool.Tool)},
	}
	return db, nil
}

// Reset clears all tables, for tests.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.billing.Lock()
	db.billing.payments = make(map[string]*billing.Payment)
	db.billing.balances = make(map[string]int)
	db.billing.Unlock()

	db.assignment.Lock()
	db.assignment.table = nil
	db.assignment.Unlock()

	db.submission.Lock()
	db.submission.table = nil
	db.submission.Unlock()

	db.tool.Lock()
	db.tool.table = make(map[string]*tool.Tool)
	db.tool.Unlock()
}

// Seed helpers for tests.

func (db *DB) SeedTemplates(tps ...assignment.Template) {
	db.assignment.Lock()
	defer db.assignment.Unlock()
	db.assignment.table = append(db.assignment.table, tps...)
}

func (db *DB) SeedLeaderboard(entries ...submission.Entry) {
	db.submission.Lock()
	defer db.submission.Unlock()
	db.submission.table = append(db.submission.table, entries...)
}

func (db *DB) SeedTools(tls ...tool.Tool) {
	db.tool.Lock()
	defer db.tool.Unlock()
	for i := range tls {
		tl := tls[i]
		db.tool.table[tl.Slug] = &tl
	}
}

func (db *DB) SeedBalance(userID string, balance int) {
	db.billing.Lock()
	defer db.billing.Unlock()
	db.billing.balances[userID] = balance
}
