package model

type Testimonial struct {
	ID           string `gorm:"column:id;type:text;primaryKey"`
	Name         string `gorm:"column:name;type:text;not null"`
	Organization string `gorm:"column:organization;type:text;not null"`
	Rating       int    `gorm:"column:rating;not null"`
	Text         string `gorm:"column:text;type:text;not null"`
	CreatedAt    string `gorm:"column:created_at;type:text;not null;index"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}
