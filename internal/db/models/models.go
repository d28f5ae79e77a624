package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&Site{},
		&Key{},
		&Setting{},
		&DateTimeSettingValue{},
		&DateSettingValue{},
		&TimeSettingValue{},
		&BooleanSettingValue{},
		&NumberSettingValue{},
		&DecimalSettingValue{},
		&EmailSettingValue{},
		&CharSettingTranslation{},
		&TextSettingTranslation{},
		&SlugSettingTranslation{},
		&URLSettingTranslation{},
	}
}
