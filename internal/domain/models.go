package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ToDoItem is a row in the ToDo table the SQL output binding writes to.
// The column names are fixed by the table schema, including the quoted
// reserved word [order].
type ToDoItem struct {
	ID        uuid.UUID `gorm:"column:Id;type:uniqueidentifier;primaryKey" json:"id"`
	Order     *int      `gorm:"column:order" json:"order,omitempty"`
	Title     string    `gorm:"column:title;type:nvarchar(200);not null" json:"title"`
	URL       string    `gorm:"column:url;type:nvarchar(200)" json:"url"`
	Completed bool      `gorm:"column:completed;not null" json:"completed"`
}

// TableName resolves to dbo.ToDo under the default SQL Server schema
func (ToDoItem) TableName() string {
	return "ToDo"
}

// BeforeCreate assigns the row ID. Generated client-side rather than by
// a column default so the greeting response and the queue message can
// reference the same ID without a round trip.
func (t *ToDoItem) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// OutboxMessage is a pending queue write. A message row is inserted in
// the same transaction as the SQL work it accompanies and marked sent
// once the queue has accepted it.
type OutboxMessage struct {
	ID        uuid.UUID  `gorm:"column:Id;type:uniqueidentifier;primaryKey"`
	QueueName string     `gorm:"column:QueueName;type:nvarchar(63);not null"`
	Payload   string     `gorm:"column:Payload;not null"`
	CreatedAt time.Time  `gorm:"column:CreatedAt;not null"`
	Sent      bool       `gorm:"column:Sent;not null"`
	SentAt    *time.Time `gorm:"column:SentAt"`
}

// TableName resolves to dbo.Outbox
func (OutboxMessage) TableName() string {
	return "Outbox"
}

func (m *OutboxMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
