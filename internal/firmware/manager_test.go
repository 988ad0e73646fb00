package firmware

import (
	"errors"
	"testing"
	"time"
)

func TestParseImageName(t *testing.T) {
	tests := []struct {
		name        string
		wantType    string
		wantVersion string
		wantErr     bool
	}{
		{"Bifrost_release_Mainboard_software_1.3.0.bin", "Mainboard", "1.3.0", false},
		{"Bifrost-IAM-V2_3.3.0.bin", "IAM-V2", "3.3.0", false},
		{"Bifrost_release_HMI_resources_1.0.6.bin", "HMI_resources", "1.0.6", false},
		{"Bifrost-Mainboard1.2.4.bin", "Mainboard", "1.2.4", false},
		{"firmware.bin", "", "", true},
		{"Bifrost_release_Mainboard_software_1.3.bin", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ParseImageName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseImageName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnrecognisedImage) {
					t.Errorf("error = %v, want ErrUnrecognisedImage", err)
				}
				return
			}
			if img.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", img.Type, tt.wantType)
			}
			if img.Version.String() != tt.wantVersion {
				t.Errorf("Version = %s, want %s", img.Version, tt.wantVersion)
			}
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.4", "1.2.3", 1},
		{"1.10.0", "1.9.9", 1},
		{"2.0.0", "10.0.0", -1},
		{"1.2", "1.2.0", 0},
	}

	for _, tt := range tests {
		if got := MustParseVersion(tt.a).Compare(MustParseVersion(tt.b)); got != tt.want {
			t.Errorf("%s vs %s = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	if _, err := ParseVersion("1.x.3"); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("ParseVersion(1.x.3) error = %v, want ErrInvalidVersion", err)
	}
}

func TestManager_Upload(t *testing.T) {
	m := NewManager(Config{})

	m.Upload("a.bin")
	m.Upload("b.bin")
	files, err := m.Upload("a.bin")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if len(files) != 2 || files[0] != "a.bin" || files[1] != "b.bin" {
		t.Errorf("files = %v, want [a.bin b.bin]", files)
	}

	for _, bad := range []string{"", "  ", "../x.bin"} {
		if _, err := m.Upload(bad); !errors.Is(err, ErrInvalidFileName) {
			t.Errorf("Upload(%q) error = %v, want ErrInvalidFileName", bad, err)
		}
	}
}

func TestManager_UpdateAvailable(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{"nothing uploaded", nil, false},
		{"older mainboard", []string{"Bifrost_release_Mainboard_software_1.2.0.bin"}, false},
		{"same mainboard", []string{"Bifrost_release_Mainboard_software_1.2.3.bin"}, false},
		{"newer mainboard", []string{"Bifrost_release_Mainboard_software_1.2.4.bin"}, true},
		{"newer IAM", []string{"notes.txt", "Bifrost-IAM-V2_3.3.0.bin"}, true},
		{"unknown component", []string{"Bifrost-Toaster_9.9.9.bin"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(Config{})
			for _, f := range tt.files {
				m.Upload(f)
			}
			if _, got := m.UpdateAvailable(); got != tt.want {
				t.Errorf("UpdateAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManager_UpdateProgress(t *testing.T) {
	m := NewManager(Config{StepInterval: time.Millisecond, SettleDelay: 5 * time.Millisecond})
	defer m.Stop()
	m.Upload("Bifrost_release_Mainboard_software_1.3.0.bin")

	if st := m.Status(); st.Updating {
		t.Fatalf("Status() before start = %+v", st)
	}
	if !m.StartUpdate() {
		t.Fatal("StartUpdate() = false, want true")
	}
	if m.StartUpdate() {
		t.Error("second StartUpdate() while running = true, want false")
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.Status().Updating && time.Now().Before(deadline) {
		if p := m.Status().Percentage; p < 0 || p > 100 || p%10 != 0 {
			t.Fatalf("percentage %d not a multiple of 10 in [0, 100]", p)
		}
		time.Sleep(time.Millisecond)
	}

	st := m.Status()
	if st.Updating {
		t.Fatal("update did not finish")
	}
	if st.Percentage != 100 {
		t.Errorf("final percentage = %d, want 100", st.Percentage)
	}

	v, _ := m.Installed(ComponentMainboard)
	if v.String() != "1.3.0" {
		t.Errorf("installed mainboard = %s, want 1.3.0", v)
	}
	if _, ok := m.UpdateAvailable(); ok {
		t.Error("update still available after install")
	}
}

func TestManager_StopAbortsUpdate(t *testing.T) {
	m := NewManager(Config{StepInterval: time.Hour})
	m.StartUpdate()

	m.Stop()
	m.Stop()

	if m.Status().Updating {
		t.Error("update still running after Stop")
	}
	if m.StartUpdate() {
		t.Error("StartUpdate() after Stop = true, want false")
	}
}
