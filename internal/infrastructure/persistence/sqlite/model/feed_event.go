package model

type FeedEvent struct {
	EventID   uint64 `gorm:"column:event_id;primaryKey;autoIncrement"`
	RowJSON   string `gorm:"column:row_json;type:text;not null"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (FeedEvent) TableName() string {
	return "feed_events"
}
