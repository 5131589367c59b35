package event

// ConfigLoadedData is the data for config.loaded events.
type ConfigLoadedData struct {
	Path string `json:"path"`
}

// ConfigSavedData is the data for config.saved events.
type ConfigSavedData struct {
	Path string `json:"path"`
}

// ConfigReloadedData is the data for config.reloaded events.
type ConfigReloadedData struct {
	Path string `json:"path"`
}

// ConfigChangedData is the data for config.changed events, emitted once per
// property write with the dotted access path that changed.
type ConfigChangedData struct {
	Path      string `json:"path"`
	AccessKey string `json:"accessKey"`
}

// ConfigQuarantinedData is the data for config.quarantined events, emitted
// when a corrupt file is renamed aside and replaced with defaults.
type ConfigQuarantinedData struct {
	Path        string `json:"path"`
	RenamedPath string `json:"renamedPath"`
	Reason      string `json:"reason"`
}

// LanguageLoadedData is the data for language.loaded events.
type LanguageLoadedData struct {
	Code string `json:"code"`
	Path string `json:"path"`
}

// LanguageUnloadedData is the data for language.unloaded events.
type LanguageUnloadedData struct {
	Code string `json:"code"`
}

// LanguageSwitchedData is the data for language.switched events.
type LanguageSwitchedData struct {
	From string `json:"from"`
	To   string `json:"to"`
}
