package store

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestHasAdminAccess(t *testing.T) {
	cases := []struct {
		name  string
		admin *bool
		email string
		want  bool
	}{
		{"flag true", boolPtr(true), "someone@example.com", true},
		{"flag false", boolPtr(false), "someone@example.com", false},
		{"flag false overrides fallback email", boolPtr(false), AdminFallbackEmail, false},
		{"flag absent, fallback email", nil, AdminFallbackEmail, true},
		{"flag absent, fallback email upper", nil, "SOPORTE@ADVISORET.APP", true},
		{"flag absent, fallback email padded", nil, "  " + AdminFallbackEmail + " ", true},
		{"flag absent, other email", nil, "someone@example.com", false},
		{"flag absent, empty email", nil, "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u := &User{IsAdmin: c.admin, Email: c.email}
			if got := u.HasAdminAccess(); got != c.want {
				t.Errorf("HasAdminAccess() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	admin := &User{IsAdmin: boolPtr(true)}
	if admin.Role() != "admin" {
		t.Errorf("Role() = %q, want admin", admin.Role())
	}

	user := &User{IsAdmin: boolPtr(false), Email: AdminFallbackEmail}
	if user.Role() != "user" {
		t.Errorf("Role() = %q, want user", user.Role())
	}
}

func TestPasswordSetAndCompare(t *testing.T) {
	var p password
	if err := p.Set("correct horse battery staple"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.Compare("correct horse battery staple"); err != nil {
		t.Errorf("Compare with right password: %v", err)
	}
	if err := p.Compare("wrong"); err == nil {
		t.Error("Compare accepted wrong password")
	}
}
