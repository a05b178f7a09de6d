package typeid

import (
	"strings"
	"testing"
)

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"board", NewBoardID(), PrefixBoard},
		{"client", NewClientID(), PrefixClient},
		{"snapshot", NewSnapshotID(), PrefixSnapshot},
		{"user", NewUserID(), PrefixUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.id, tt.prefix+"_") {
				t.Errorf("id %q lacks prefix %q", tt.id, tt.prefix)
			}
			if err := Validate(tt.id, tt.prefix); err != nil {
				t.Error(err)
			}
		})
	}

	if err := Validate(NewBoardID(), PrefixClient); err == nil {
		t.Error("prefix mismatch accepted")
	}
	if err := Validate("not an id", PrefixBoard); err == nil {
		t.Error("garbage accepted")
	}
}
