package repository

import "gorm.io/gorm/clause"

// forUpdate locks the selected rows until the surrounding transaction ends.
// Dialects without row locks (sqlite) drop the clause.
var forUpdate = clause.Locking{Strength: "UPDATE"}
