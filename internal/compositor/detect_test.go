package compositor

import "testing"

func clearSessionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SWAYSOCK", "")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	t.Setenv("XDG_CURRENT_DESKTOP", "")
}

func TestDetect_SwaySocket(t *testing.T) {
	clearSessionEnv(t)
	t.Setenv("SWAYSOCK", "/run/user/1000/sway-ipc.sock")
	if got := Detect(); got != BackendSway {
		t.Fatalf("expected sway, got %q", got)
	}
}

func TestDetect_HyprlandSignature(t *testing.T) {
	clearSessionEnv(t)
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc123")
	if got := Detect(); got != BackendHyprland {
		t.Fatalf("expected hyprland, got %q", got)
	}
}

func TestDetect_DesktopMarker(t *testing.T) {
	clearSessionEnv(t)
	t.Setenv("XDG_CURRENT_DESKTOP", "Hyprland")
	if got := Detect(); got != BackendHyprland {
		t.Fatalf("expected hyprland, got %q", got)
	}
}

func TestDetect_DefaultsToSway(t *testing.T) {
	clearSessionEnv(t)
	if got := Detect(); got != BackendSway {
		t.Fatalf("expected sway default, got %q", got)
	}
}

func TestParseBackend(t *testing.T) {
	clearSessionEnv(t)

	cases := []struct {
		in   string
		want Backend
	}{
		{"sway", BackendSway},
		{"Hyprland", BackendHyprland},
		{"auto", BackendSway},
		{"", BackendSway},
	}
	for _, tc := range cases {
		got, err := ParseBackend(tc.in)
		if err != nil {
			t.Fatalf("ParseBackend(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseBackend(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if _, err := ParseBackend("kwin"); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}
