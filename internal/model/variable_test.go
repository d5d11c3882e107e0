package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestVariableDecodesTaggedUnion(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, v Variable)
	}{
		{
			name: "field binding with relationships",
			src:  `{"type": "field", "data": {"field_id": "author", "relationships": ["name"], "format": "year"}}`,
			check: func(t *testing.T, v Variable) {
				want := &FieldRef{FieldID: "author", Relationships: []string{"name"}, Format: "year"}
				if !reflect.DeepEqual(v.Field, want) {
					t.Errorf("field = %+v, want %+v", v.Field, want)
				}
				if got := v.Field.Path(); got != "author.name" {
					t.Errorf("path = %q, want %q", got, "author.name")
				}
			},
		},
		{
			name: "page link with anchor",
			src:  `{"type": "link", "data": {"kind": "page", "page_id": "pg1", "anchor_layer_id": "section", "new_tab": true}}`,
			check: func(t *testing.T, v Variable) {
				want := &Link{Kind: LinkPage, PageID: "pg1", AnchorLayerID: "section", NewTab: true}
				if !reflect.DeepEqual(v.Link, want) {
					t.Errorf("link = %+v, want %+v", v.Link, want)
				}
			},
		},
		{
			name: "dynamic text segments",
			src:  `{"type": "dynamic_text", "data": {"segments": [{"text": "By "}, {"field": {"field_id": "author"}}]}}`,
			check: func(t *testing.T, v Variable) {
				if len(v.Segments) != 2 {
					t.Fatalf("segments = %d, want 2", len(v.Segments))
				}
				if v.Segments[0].Text != "By " || v.Segments[1].Field == nil {
					t.Errorf("segments decoded wrong: %+v", v.Segments)
				}
			},
		},
		{
			name: "linked slot",
			src:  `{"type": "static_text", "data": {"text": "placeholder"}, "component_variable_id": "var1"}`,
			check: func(t *testing.T, v Variable) {
				if !v.Linked() || v.ComponentVariableID != "var1" {
					t.Errorf("linked slot not recognized: %+v", v)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Variable
			if err := json.Unmarshal([]byte(tt.src), &v); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			tt.check(t, v)

			out, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var want, got map[string]any
			if err := json.Unmarshal([]byte(tt.src), &want); err != nil {
				t.Fatalf("unmarshal source: %v", err)
			}
			if err := json.Unmarshal(out, &got); err != nil {
				t.Fatalf("unmarshal output: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip changed the value:\n got %v\nwant %v", got, want)
			}
		})
	}
}

func TestRichTextPlainText(t *testing.T) {
	doc := &RichText{Nodes: []RichNode{
		{Type: RichHeading, Level: 2, Children: []RichNode{{Type: RichTextRun, Text: "Title"}}},
		{Type: RichParagraph, Children: []RichNode{
			{Type: RichTextRun, Text: "Hello "},
			{Type: RichTextRun, Text: "world", Marks: []Mark{{Type: MarkBold}}},
		}},
	}}
	if got, want := doc.PlainText(), "Title\nHello world"; got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestPlainDocWrapsText(t *testing.T) {
	doc := PlainDoc("hallo")
	if len(doc.Nodes) != 1 || doc.Nodes[0].Type != RichParagraph {
		t.Fatalf("PlainDoc shape: %+v", doc.Nodes)
	}
	if got := doc.PlainText(); got != "hallo" {
		t.Errorf("PlainText = %q, want %q", got, "hallo")
	}
}
