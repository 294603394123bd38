package roles

import "testing"

func TestEffectiveDefaultsToUser(t *testing.T) {
	set := Effective(nil)
	if !set.Has(User) {
		t.Fatal("empty grant list must yield the user role")
	}
	if set.IsAdmin() {
		t.Fatal("empty grant list must not yield admin")
	}
}

func TestEffectiveAdmin(t *testing.T) {
	set := Effective([]string{Admin})
	if !set.IsAdmin() {
		t.Fatal("admin grant not reflected")
	}
}

func TestValid(t *testing.T) {
	for _, r := range []string{User, Admin} {
		if !Valid(r) {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []string{"", "root", "superuser"} {
		if Valid(r) {
			t.Errorf("%q should be invalid", r)
		}
	}
}
