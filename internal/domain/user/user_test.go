package user

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{name: "both", first: "Jo", last: "Doe", want: "JoDoe"},
		{name: "first_only", first: "Jo", last: "", want: "Jo"},
		{name: "last_only", first: "", last: "Doe", want: "Doe"},
		{name: "both_empty", first: "", last: "", want: ""},
		{name: "surrounding_whitespace", first: "  Jo", last: "Doe  ", want: "JoDoe"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.first, tt.last); got != tt.want {
				t.Errorf("DisplayName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleInterviewer.Valid() || !RoleCandidate.Valid() {
		t.Error("allowed roles must validate")
	}

	if Role("admin").Valid() {
		t.Error("roles outside the enum must not validate")
	}
}
