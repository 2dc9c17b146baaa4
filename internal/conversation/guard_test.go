package conversation

import "testing"

func TestGuardCheck(t *testing.T) {
	g := NewGuard([]int64{42, 99})

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{name: "allowed user", userID: 42, want: true},
		{name: "second allowed user", userID: 99, want: true},
		{name: "unknown user", userID: 7, want: false},
		{name: "zero id", userID: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Check(tt.userID); got != tt.want {
				t.Errorf("Check(%d) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestGuardEmptyAllowList(t *testing.T) {
	g := NewGuard(nil)
	if g.Check(42) {
		t.Error("Check() = true with an empty allow-list")
	}
}
