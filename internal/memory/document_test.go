package memory

import "testing"

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"content wins", Document{Content: "c", Summary: "s", Title: "t", Chunks: []Chunk{{Content: "k"}}}, "c"},
		{"summary next", Document{Summary: "s", Title: "t", Chunks: []Chunk{{Content: "k"}}}, "s"},
		{"title next", Document{Title: "t", Chunks: []Chunk{{Content: "k"}}}, "t"},
		{"chunks next", Document{Chunks: []Chunk{{Content: "k1"}, {Content: "k2"}}}, "k1\nk2"},
		{"placeholder last", Document{}, Placeholder},
		{"blank fields skipped", Document{Content: "   ", Summary: "\t", Title: "t"}, "t"},
		{"blank chunks skipped", Document{Chunks: []Chunk{{Content: " "}, {Content: ""}}}, Placeholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.Resolve(); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveSummaryFirstOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"summary wins", Document{Content: "c", Summary: "s", Title: "t"}, "s"},
		{"title next", Document{Content: "c", Title: "t"}, "t"},
		{"content next", Document{Content: "c"}, "c"},
		{"placeholder last", Document{Chunks: []Chunk{{Content: "k"}}}, Placeholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.ResolveSummaryFirst(); got != tt.want {
				t.Errorf("ResolveSummaryFirst() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveForGroundingOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"summary wins", Document{Summary: "s", Title: "t", Chunks: []Chunk{{Content: "k"}}}, "s"},
		{"title next", Document{Title: "t", Chunks: []Chunk{{Content: "k"}}}, "t"},
		{"chunks next", Document{Content: "ignored", Chunks: []Chunk{{Content: "k1"}, {Content: "k2"}}}, "k1\nk2"},
		{"placeholder last", Document{}, Placeholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.ResolveForGrounding(); got != tt.want {
				t.Errorf("ResolveForGrounding() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolutionIsDeterministic(t *testing.T) {
	doc := Document{Summary: "s", Title: "t"}
	for i := 0; i < 3; i++ {
		if doc.Resolve() != "s" || doc.ResolveForGrounding() != "s" {
			t.Fatal("resolution changed across calls")
		}
	}
}
