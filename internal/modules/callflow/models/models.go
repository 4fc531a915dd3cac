package models

// All returns every model of the module, for migrations in tests.
func All() []interface{} {
	return []interface{}{
		&Location{},
		&FlowPreference{},
		&CallEvent{},
		&Template{},
		&TemplateCompletion{},
		&Message{},
		&PhoneNumber{},
	}
}
