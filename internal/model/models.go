package model

// All lists every migrated model, referenced tables first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Property{},
		&PropertyRequest{},
		&Like{},
		&Comment{},
		&Message{},
		&Notification{},
		&Follow{},
		&PushToken{},
		&Promotion{},
		&LoginHistory{},
	}
}
