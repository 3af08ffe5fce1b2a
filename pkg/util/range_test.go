package util

import (
	"reflect"
	"testing"
)

func TestExpandRange(t *testing.T) {
	tests := []struct {
		spec    string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"1-5", []int{1, 2, 3, 4, 5}, false},
		{"1,3,5", []int{1, 3, 5}, false},
		{"1-3, 5, 7-9", []int{1, 2, 3, 5, 7, 8, 9}, false},
		{"3,1-3", []int{1, 2, 3}, false},
		{"5-1", nil, true},
		{"a-3", nil, true},
		{"1-b", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ExpandRange(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExpandRange(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandRange(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestCompactRange(t *testing.T) {
	tests := []struct {
		in   []int
		want string
	}{
		{nil, ""},
		{[]int{4}, "4"},
		{[]int{1, 2, 3, 5, 7, 8, 9}, "1-3,5,7-9"},
		{[]int{9, 8, 7, 7, 1}, "1,7-9"},
	}

	for _, tt := range tests {
		if got := CompactRange(tt.in); got != tt.want {
			t.Errorf("CompactRange(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
