package model

// Ingredient は食材の参照データを表す。
// (Name, MeasurementUnit) の組はユニーク。
type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

// Tag はレシピに付与するタグを表す。Slugはユニーク。
type Tag struct {
	ID   int64
	Name string
	Slug string
}
