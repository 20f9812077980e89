package models

// SchemaMeta is a key/value record for installation-level flags such as the seed version.
type SchemaMeta struct {
	Key   string `gorm:"type:varchar(64);primaryKey"`
	Value string `gorm:"type:varchar(255);not null"`
}

func (SchemaMeta) TableName() string {
	return "schema_meta"
}
