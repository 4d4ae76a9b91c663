package models

// All returns every persisted model, in dependency order, for schema syncing.
func All() []any {
	return []any{
		&User{},
		&UserSession{},
		&Group{},
		&GroupMember{},
		&MemberSession{},
		&Post{},
		&Comment{},
		&Reaction{},
	}
}
