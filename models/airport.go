package models

// Airport is one row of the airport reference table.
type Airport struct {
	ID   int    `gorm:"column:airport_id;primaryKey" json:"id"`
	Name string `gorm:"column:airport_name" json:"name"`
}

func (Airport) TableName() string { return "airports" }
