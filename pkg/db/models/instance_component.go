package models

// InstanceComponent records one selected component of an instance.
type InstanceComponent struct {
	ID              int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ItemInstanceID  int64 `gorm:"column:item_instance_id;not null" json:"item_instance_id"`
	ItemComponentID int64 `gorm:"column:item_component_id;not null" json:"item_component_id"`
	Portion         int   `gorm:"column:portion;not null;default:1" json:"portion"`
}

func (InstanceComponent) TableName() string { return "menu_item_instance_components" }
