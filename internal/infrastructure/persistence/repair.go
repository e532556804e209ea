package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
)

var (
	// documentCodec кодирует документ для хранения.
	documentCodec = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals
	// rawCodec разбирает документ в нетипизированное дерево, числа как json.Number.
	rawCodec = jsoniter.Config{UseNumber: true, SortMapKeys: true}.Froze() //nolint:gochecknoglobals
	validate = validator.New()                                             //nolint:gochecknoglobals
)

var errNotObject = errors.New("document is not a JSON object")

type fieldKind int

const (
	kindInt fieldKind = iota
	kindString
	kindBool
)

type field struct {
	key      string
	kind     fieldKind
	nullable bool
}

// accepts проверка типа значения из нетипизированного дерева.
func (f field) accepts(v any) bool {
	if v == nil {
		return f.nullable
	}

	switch f.kind {
	case kindInt:
		n, ok := v.(json.Number)
		if !ok {
			return false
		}

		_, err := n.Int64()

		return err == nil
	case kindString:
		_, ok := v.(string)

		return ok
	case kindBool:
		_, ok := v.(bool)

		return ok
	}

	return false
}

//nolint:gochecknoglobals
var (
	configFields = []field{
		{key: "BALANCE", kind: kindInt},
		{key: "ACTIVE", kind: kindBool},
		{key: "LAST_MENU_MESSAGE_ID", kind: kindInt, nullable: true},
	}

	userbotFields = []field{
		{key: "ENABLED", kind: kindBool},
		{key: "BALANCE", kind: kindInt},
	}

	profileFields = []field{
		{key: "ID", kind: kindString},
		{key: "NAME", kind: kindString, nullable: true},
		{key: "MIN_PRICE", kind: kindInt},
		{key: "MAX_PRICE", kind: kindInt},
		{key: "MIN_SUPPLY", kind: kindInt},
		{key: "MAX_SUPPLY", kind: kindInt},
		{key: "LIMIT", kind: kindInt},
		{key: "COUNT", kind: kindInt},
		{key: "TARGET_USER_ID", kind: kindInt, nullable: true},
		{key: "TARGET_CHAT_ID", kind: kindString, nullable: true},
		{key: "TARGET_TYPE", kind: kindString, nullable: true},
		{key: "SENDER", kind: kindString},
		{key: "BOUGHT", kind: kindInt},
		{key: "SPENT", kind: kindInt},
		{key: "DONE", kind: kindBool},
	}

	// legacyProfileKeys плоские поля конфигурации до появления списка профилей.
	legacyProfileKeys = []string{
		"MIN_PRICE", "MAX_PRICE", "MIN_SUPPLY", "MAX_SUPPLY",
		"COUNT", "LIMIT", "TARGET_USER_ID", "TARGET_CHAT_ID",
		"BOUGHT", "SPENT", "DONE",
	}
)

// repairer приводит документ к схеме: каждое поле с неверным типом,
// запрещённым null или вне допустимого диапазона заменяется значением
// по умолчанию. Повторный прогон результата ничего не меняет.
type repairer struct {
	ownerID     int64
	maxProfiles int
	newID       func() string
}

func decodeRaw(data []byte) (map[string]any, error) {
	var raw map[string]any

	if err := rawCodec.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("rawCodec.Unmarshal: %w", err)
	}

	if raw == nil {
		return nil, errNotObject
	}

	return raw, nil
}

func isLegacy(raw map[string]any) bool {
	_, ok := raw["PROFILES"]

	return !ok
}

// liftLegacy переносит плоские поля старого формата в единственный профиль.
func liftLegacy(raw map[string]any) map[string]any {
	profile := make(map[string]any, len(legacyProfileKeys))

	for _, key := range legacyProfileKeys {
		if v, ok := raw[key]; ok {
			profile[key] = v
		}
	}

	setDefault(profile, "LIMIT", json.Number("1000000"))
	setDefault(profile, "SPENT", json.Number("0"))
	setDefault(profile, "BOUGHT", json.Number("0"))
	setDefault(profile, "DONE", false)
	setDefault(profile, "COUNT", json.Number("5"))

	lifted := map[string]any{
		"BALANCE":              json.Number("0"),
		"ACTIVE":               false,
		"LAST_MENU_MESSAGE_ID": raw["LAST_MENU_MESSAGE_ID"],
		"PROFILES":             []any{profile},
	}

	if v, ok := raw["BALANCE"]; ok {
		lifted["BALANCE"] = v
	}

	if v, ok := raw["ACTIVE"]; ok {
		lifted["ACTIVE"] = v
	}

	return lifted
}

func setDefault(m map[string]any, key string, v any) {
	if _, ok := m[key]; !ok {
		m[key] = v
	}
}

// repair возвращает исправленный документ и признак того, что он отличается
// от исходного дерева.
func (r repairer) repair(raw map[string]any) (configDocument, bool) {
	defaults := newConfigDocument(entity.DefaultConfiguration(r.ownerID))
	defaultsRaw := mustRaw(defaults)

	var doc configDocument
	mustDecode(pick(raw, configFields, defaultsRaw), &doc)
	resetInvalid(&doc, defaults)

	userbotRaw, _ := raw["USERBOT"].(map[string]any)
	mustDecode(pick(userbotRaw, userbotFields, defaultsRaw["USERBOT"].(map[string]any)), &doc.Userbot) //nolint:forcetypeassert
	resetInvalid(&doc.Userbot, defaults.Userbot)

	doc.Profiles = r.repairProfiles(raw["PROFILES"])

	return doc, !reflect.DeepEqual(raw, mustRaw(doc))
}

func (r repairer) repairProfiles(v any) []profileDocument {
	items, _ := v.([]any)
	seen := make(map[string]struct{}, len(items))
	profiles := make([]profileDocument, 0, len(items))

	for _, item := range items {
		if len(profiles) == r.maxProfiles {
			break
		}

		rawProfile, ok := item.(map[string]any)
		if !ok {
			continue
		}

		p := r.repairProfile(rawProfile)

		if _, dup := seen[p.ID]; dup || p.ID == "" {
			p.ID = r.newID()
		}

		seen[p.ID] = struct{}{}
		profiles = append(profiles, p)
	}

	if len(profiles) == 0 {
		p := newProfileDocument(entity.DefaultProfile(r.ownerID))
		p.ID = r.newID()
		profiles = append(profiles, p)
	}

	return profiles
}

func (r repairer) repairProfile(raw map[string]any) profileDocument {
	defaults := newProfileDocument(entity.DefaultProfile(r.ownerID))
	defaults.ID = ""

	var p profileDocument
	mustDecode(pick(raw, profileFields, mustRaw(defaults)), &p)
	resetInvalid(&p, defaults)

	fixBand(&p.MinPrice, &p.MaxPrice,
		kept(raw, "MIN_PRICE", p.MinPrice), kept(raw, "MAX_PRICE", p.MaxPrice),
		defaults.MinPrice, defaults.MaxPrice)
	fixBand(&p.MinSupply, &p.MaxSupply,
		kept(raw, "MIN_SUPPLY", p.MinSupply), kept(raw, "MAX_SUPPLY", p.MaxSupply),
		defaults.MinSupply, defaults.MaxSupply)

	r.normalizeTarget(&p)

	return p
}

// fixBand чинит перевёрнутый диапазон. Если из документа пришла только одна
// граница, вторая выводится из неё. Если обе, сбрасываются обе.
func fixBand(lo, hi *int64, loKept, hiKept bool, defaultLo, defaultHi int64) {
	if *lo <= *hi {
		return
	}

	switch {
	case loKept && !hiKept:
		*hi = max(defaultHi, *lo)
	case hiKept && !loKept:
		*lo = min(defaultLo, *hi)
	default:
		*lo, *hi = defaultLo, defaultHi
	}
}

// kept true, если значение поля взято из документа, а не из значений по умолчанию.
func kept(raw map[string]any, key string, got int64) bool {
	n, ok := raw[key].(json.Number)
	if !ok {
		return false
	}

	v, err := n.Int64()

	return err == nil && v == got
}

// normalizeTarget оставляет ровно одного получателя: канал, если задан,
// иначе пользователя, иначе владельца.
func (r repairer) normalizeTarget(p *profileDocument) {
	p.TargetType = nil

	if p.TargetChatID != nil {
		recipient, err := value.ChannelRecipient(*p.TargetChatID)
		if err == nil {
			channel := recipient.String()
			targetType := targetTypeChannel
			p.TargetChatID = &channel
			p.TargetUserID = nil
			p.TargetType = &targetType

			return
		}

		p.TargetChatID = nil
	}

	if p.TargetUserID != nil && *p.TargetUserID > 0 {
		return
	}

	owner := r.ownerID
	p.TargetUserID = &owner
}

// pick собирает значения по схеме, подставляя значение по умолчанию
// для отсутствующих полей и полей с неверным типом. Неизвестные ключи
// отбрасываются.
func pick(src map[string]any, fields []field, defaults map[string]any) map[string]any {
	out := make(map[string]any, len(fields))

	for _, f := range fields {
		if v, ok := src[f.key]; ok && f.accepts(v) {
			out[f.key] = v

			continue
		}

		out[f.key] = defaults[f.key]
	}

	return out
}

// resetInvalid проверяет теги validate и сбрасывает каждое поле,
// не прошедшее проверку, в значение из defaults.
func resetInvalid[T any](doc *T, defaults T) {
	err := validate.Struct(doc)
	if err == nil {
		return
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return
	}

	target := reflect.ValueOf(doc).Elem()
	source := reflect.ValueOf(defaults)

	for _, fe := range fieldErrors {
		name := fe.StructField()
		target.FieldByName(name).Set(source.FieldByName(name))
	}
}

func mustRaw(v any) map[string]any {
	data, err := documentCodec.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal document: %v", err))
	}

	raw, err := decodeRaw(data)
	if err != nil {
		panic(fmt.Sprintf("decode document: %v", err))
	}

	return raw
}

func mustDecode(raw map[string]any, dest any) {
	data, err := rawCodec.Marshal(raw)
	if err != nil {
		panic(fmt.Sprintf("marshal raw: %v", err))
	}

	if err = rawCodec.Unmarshal(data, dest); err != nil {
		panic(fmt.Sprintf("decode raw: %v", err))
	}
}

func encodeDocument(doc configDocument) ([]byte, error) {
	data, err := documentCodec.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("documentCodec.MarshalIndent: %w", err)
	}

	return data, nil
}
