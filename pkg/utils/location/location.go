package location

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
)

type Governorate struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	NameEn    string   `json:"name_en"`
	Districts []string `json:"districts"`
}

//go:embed data/governorates.json
var governoratesJSON []byte

var (
	governorates []Governorate
	loadOnce     sync.Once
	loadErr      error
)

// Init parses the embedded governorate list. Safe to call more than once.
func Init() error {
	loadOnce.Do(func() {
		loadErr = json.Unmarshal(governoratesJSON, &governorates)
	})
	return loadErr
}

func GetGovernorates() []Governorate {
	Init()
	return governorates
}

// Find matches a governorate by code, Arabic name or English name.
func Find(key string) (Governorate, bool) {
	key = strings.TrimSpace(key)
	for _, g := range GetGovernorates() {
		if strings.EqualFold(g.Code, key) || g.Name == key || strings.EqualFold(g.NameEn, key) {
			return g, true
		}
	}
	return Governorate{}, false
}
