package part

import "testing"

func TestDeriveRanges(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []Range
	}{
		{
			name:   "single line",
			output: "<file>\n00001| hello\n(End of file - total 1 lines)\n</file>",
			want:   []Range{{Start: 0, End: 0}},
		},
		{
			name:   "excerpt block",
			output: "<file>\n00007| a\n00008| b\n00009| c\n(Excerpt lines 7-9 of total 20 lines)\n</file>",
			want:   []Range{{Start: 6, End: 8}},
		},
		{
			name:   "no pipe after digits",
			output: "12345 not a numbered row",
			want:   nil,
		},
		{
			name:   "pipe without space",
			output: "3|tight",
			want:   []Range{{Start: 2, End: 2}},
		},
		{
			name:   "empty output",
			output: "",
			want:   nil,
		},
		{
			name:   "footer lines ignored",
			output: "(End of file - total 4 lines)",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveRanges(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d ranges, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("range[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDeriveRanges_ForeignWriterConvention(t *testing.T) {
	// A block authored by another writer, without the envelope, still derives
	// as long as rows follow the numbered-line convention.
	output := "104| alpha\n105| beta\n110| gamma"
	got := DeriveRanges(output)
	if len(got) != 1 {
		t.Fatalf("got %d ranges, want 1", len(got))
	}
	if got[0].Start != 103 || got[0].End != 109 {
		t.Errorf("range = %+v, want {103 109}", got[0])
	}
}
