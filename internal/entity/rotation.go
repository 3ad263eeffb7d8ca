package entity

import (
	"database/sql"
	"time"
)

// Rotation records one daily rotation. The date key makes a second rotation
// on the same day fail on insert.
type Rotation struct {
	Date      string `gorm:"primarykey"`
	CreatedAt time.Time

	WinnerID sql.NullString
	Aged     Array[string]
	Archived Array[string]
	Promoted Array[string]
	Wallets  int64
}
