package setting

import (
	"fmt"
)

// Kind is the value type discriminant of a setting. It is fixed at creation.
type Kind string

// Setting kinds.
const (
	KindChar     Kind = "char"
	KindText     Kind = "text"
	KindDateTime Kind = "datetime"
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindBoolean  Kind = "boolean"
	KindNumber   Kind = "number"
	KindDecimal  Kind = "decimal"
	KindEmail    Kind = "email"
	KindSlug     Kind = "slug"
	KindURL      Kind = "url"
)

type kindInfo struct {
	display          string
	translated       bool
	translationTable string
}

var kindInfos = map[Kind]kindInfo{ //nolint:gochecknoglobals
	KindChar:     {display: "short text", translated: true, translationTable: "char_setting_translations"},
	KindText:     {display: "text", translated: true, translationTable: "text_setting_translations"},
	KindDateTime: {display: "date and time"},
	KindDate:     {display: "date"},
	KindTime:     {display: "time"},
	KindBoolean:  {display: "boolean"},
	KindNumber:   {display: "number"},
	KindDecimal:  {display: "decimal"},
	KindEmail:    {display: "email"},
	KindSlug:     {display: "slug", translated: true, translationTable: "slug_setting_translations"},
	KindURL:      {display: "URL", translated: true, translationTable: "url_setting_translations"},
}

// Kinds returns every kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindChar, KindText, KindDateTime, KindDate, KindTime, KindBoolean,
		KindNumber, KindDecimal, KindEmail, KindSlug, KindURL,
	}
}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}

	return k, nil
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindInfos[k]
	return ok
}

// Translated reports whether values of k are stored per language.
func (k Kind) Translated() bool {
	return kindInfos[k].translated
}

// DisplayName is the human readable kind name shown in listings.
func (k Kind) DisplayName() string {
	if info, ok := kindInfos[k]; ok {
		return info.display
	}

	return string(k)
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) translationTable() string {
	return kindInfos[k].translationTable
}
