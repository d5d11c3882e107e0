package store

import "testing"

func TestTranslationSetLookup(t *testing.T) {
	ts := NewTranslationSet("de",
		[]Translation{
			{LocaleID: "de", SourceType: SourcePage, SourceID: "pg1", LayerID: "t1", ContentKey: KeyText, Value: "Hallo", Complete: true},
			{LocaleID: "de", SourceType: SourcePage, SourceID: "pg1", LayerID: "t2", ContentKey: KeyText, Value: "Entwurf", Complete: false},
			{LocaleID: "de", SourceType: SourceComponent, SourceID: "card", LayerID: "t1", ContentKey: KeyText, Value: "Karte", Complete: true},
		},
		[]ItemTranslation{
			{LocaleID: "de", ItemID: "p1", FieldID: "f1", Value: "Titel", Complete: true},
			{LocaleID: "de", ItemID: "p2", FieldID: "f1", Value: "halb", Complete: false},
		},
	)

	if got, ok := ts.Layer(SourcePage, "pg1", "t1", KeyText); !ok || got != "Hallo" {
		t.Errorf("page translation = %q, %v", got, ok)
	}
	if _, ok := ts.Layer(SourcePage, "pg1", "t2", KeyText); ok {
		t.Errorf("incomplete translation should be dropped")
	}
	if got, ok := ts.Layer(SourceComponent, "card", "t1", KeyText); !ok || got != "Karte" {
		t.Errorf("component scope should not collide with page scope: %q, %v", got, ok)
	}
	if _, ok := ts.Layer(SourcePage, "pg2", "t1", KeyText); ok {
		t.Errorf("lookup should be scoped to the source document")
	}

	if got, ok := ts.ItemField("p1", "f1"); !ok || got != "Titel" {
		t.Errorf("item translation = %v, %v", got, ok)
	}
	if _, ok := ts.ItemField("p2", "f1"); ok {
		t.Errorf("incomplete item translation should be dropped")
	}
}

func TestTranslationSetNilReceiver(t *testing.T) {
	var ts *TranslationSet
	if _, ok := ts.Layer(SourcePage, "pg1", "t1", KeyText); ok {
		t.Errorf("nil set should report no translations")
	}
	if _, ok := ts.ItemField("p1", "f1"); ok {
		t.Errorf("nil set should report no item translations")
	}
}
