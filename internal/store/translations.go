package store

// TranslationSourceType scopes a layer translation to its owning document.
type TranslationSourceType string

const (
	SourcePage      TranslationSourceType = "page"
	SourceFolder    TranslationSourceType = "folder"
	SourceComponent TranslationSourceType = "component"
	SourceCMS       TranslationSourceType = "cms"
)

// ContentKey names which bound value of a layer a translation replaces.
type ContentKey string

const (
	KeyText        ContentKey = "text"
	KeyImageSrc    ContentKey = "image_src"
	KeyImageAlt    ContentKey = "image_alt"
	KeyVideoSrc    ContentKey = "video_src"
	KeyVideoPoster ContentKey = "video_poster"
	KeyAudioSrc    ContentKey = "audio_src"
	KeyIconSrc     ContentKey = "icon_src"
)

// Translation is one locale-specific replacement for a layer's bound value.
// Only complete translations are ever applied.
type Translation struct {
	LocaleID   string
	SourceType TranslationSourceType
	SourceID   string
	LayerID    string
	ContentKey ContentKey
	Value      string
	Complete   bool
}

// ItemTranslation is one locale-specific replacement for a CMS field value,
// keyed independently of layer translations.
type ItemTranslation struct {
	LocaleID string
	ItemID   string
	FieldID  string
	Value    any
	Complete bool
}

type layerTranslationKey struct {
	sourceType TranslationSourceType
	sourceID   string
	layerID    string
	contentKey ContentKey
}

type itemTranslationKey struct {
	itemID  string
	fieldID string
}

// TranslationSet is every translation for one locale, indexed for lookup
// during a resolution pass.
type TranslationSet struct {
	LocaleID string
	layers   map[layerTranslationKey]string
	items    map[itemTranslationKey]any
}

// NewTranslationSet indexes the given translations, dropping incomplete ones.
func NewTranslationSet(localeID string, layers []Translation, items []ItemTranslation) *TranslationSet {
	ts := &TranslationSet{
		LocaleID: localeID,
		layers:   make(map[layerTranslationKey]string, len(layers)),
		items:    make(map[itemTranslationKey]any, len(items)),
	}
	for _, t := range layers {
		if !t.Complete {
			continue
		}
		ts.layers[layerTranslationKey{t.SourceType, t.SourceID, t.LayerID, t.ContentKey}] = t.Value
	}
	for _, t := range items {
		if !t.Complete {
			continue
		}
		ts.items[itemTranslationKey{t.ItemID, t.FieldID}] = t.Value
	}
	return ts
}

// Layer looks up a complete layer translation.
func (ts *TranslationSet) Layer(sourceType TranslationSourceType, sourceID, layerID string, key ContentKey) (string, bool) {
	if ts == nil {
		return "", false
	}
	v, ok := ts.layers[layerTranslationKey{sourceType, sourceID, layerID, key}]
	return v, ok
}

// ItemField looks up a complete CMS field translation.
func (ts *TranslationSet) ItemField(itemID, fieldID string) (any, bool) {
	if ts == nil {
		return nil, false
	}
	v, ok := ts.items[itemTranslationKey{itemID, fieldID}]
	return v, ok
}
