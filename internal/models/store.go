package models

import "time"

// StoreConfig is the configured tenant. At most one row is active; none
// being active means the terminal has not been set up yet, which is a
// legitimate state the engine treats as "skip the cycle", not an error.
type StoreConfig struct {
	ID        string    `gorm:"column:id;primaryKey"`
	StoreID   string    `gorm:"column:store_id;uniqueIndex"`
	StoreName string    `gorm:"column:store_name"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (StoreConfig) TableName() string {
	return "store_config"
}

// User is a local employee record. PINHash is the credential material the
// cloud requires on employee pushes.
type User struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Username    string    `gorm:"column:username;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name"`
	Role        string    `gorm:"column:role"`
	PINHash     *string   `gorm:"column:pin_hash"`
	Active      bool      `gorm:"column:active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "app_user"
}

// Game is a lottery game catalog entry, used to enrich pack pushes.
type Game struct {
	ID          string    `gorm:"column:id;primaryKey"`
	GameCode    string    `gorm:"column:game_code;uniqueIndex"`
	Name        string    `gorm:"column:name"`
	TicketPrice float64   `gorm:"column:ticket_price"`
	PackSize    int       `gorm:"column:pack_size"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (Game) TableName() string {
	return "game"
}
