package stream

import (
	"testing"

	"tradelog/pkg/xerr"
)

func TestParseFilterMode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    FilterMode
		wantErr bool
	}{
		{name: "raw", in: "0", want: ModeRaw},
		{name: "human", in: "1", want: ModeHuman},
		{name: "compressed", in: "2", want: ModeCompressed},
		{name: "surrounding whitespace", in: " 2\n", want: ModeCompressed},
		{name: "out of range", in: "3", wantErr: true},
		{name: "negative", in: "-1", wantErr: true},
		{name: "non numeric", in: "human", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilterMode(tt.in)
			if tt.wantErr {
				if xerr.KindOf(err) != xerr.KindConfiguration {
					t.Fatalf("expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
