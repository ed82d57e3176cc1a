// Package memory is an in-process record store for todos and categories.
//
// Each collection keeps its rows in a primary map and maintains secondary
// indexes next to them:
//
//   - by_user: owner -> set of ids
//   - by_user_and_completed: (owner, completed) -> set of ids
//   - by_user_and_due_date: owner -> ids sorted by due date
//
// All reads and writes of a collection go through one sync.RWMutex, so an
// insert, patch or delete updates the row and every index in a single step and
// readers never see a half-applied change. Rows handed out are copies.
package memory
