package weight

import "testing"

// TestParse verifies magnitude and unit detection for the load strings
// people actually type.
func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Weight
	}{
		{"135 lbs", Weight{135, Lbs}},
		{"60 kg", Weight{60, Kg}},
		{"60KG", Weight{60, Kg}},
		{"22.5 kg", Weight{22.5, Kg}},
		{"bodyweight", Weight{0, Bodyweight}},
		{"Bodyweight + 10 lbs", Weight{10, Bodyweight}},
		{"100", Weight{100, Lbs}},
		{"heavy", Weight{0, Lbs}},
		{"", Weight{}},
		{"  ", Weight{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Parse(tt.in); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

// TestParseMagnitudeFirstNumber verifies that only the first numeric token
// counts.
func TestParseMagnitudeFirstNumber(t *testing.T) {
	if got := ParseMagnitude("3x 45 lbs plates"); got != 3 {
		t.Errorf("ParseMagnitude = %v, want 3", got)
	}
	if got := ParseMagnitude("no number"); got != 0 {
		t.Errorf("ParseMagnitude = %v, want 0", got)
	}
}

// TestString verifies the canonical text form of each unit.
func TestString(t *testing.T) {
	tests := []struct {
		in   Weight
		want string
	}{
		{Weight{140, Lbs}, "140 lbs"},
		{Weight{67.5, Kg}, "67.5 kg"},
		{Weight{0, Bodyweight}, "bodyweight"},
		{Weight{10, Bodyweight}, "bodyweight + 10 lbs"},
		{Weight{}, ""},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestAdjust verifies the stepper rules, including the zero floor and the
// bodyweight special case.
func TestAdjust(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		delta float64
		want  string
	}{
		{"empty", "", 5, "5 lbs"},
		{"lbs up", "135 lbs", 5, "140 lbs"},
		{"kg down", "60 kg", -2.5, "57.5 kg"},
		{"floor at zero", "5 lbs", -10, "0 lbs"},
		{"bodyweight up", "bodyweight", 5, "bodyweight + 5 lbs"},
		{"bodyweight down", "bodyweight + 5 lbs", -5, "bodyweight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Adjust(tt.in, tt.delta); got != tt.want {
				t.Errorf("Adjust(%q, %v) = %q, want %q", tt.in, tt.delta, got, tt.want)
			}
		})
	}
}

// TestScale verifies which loads are scaled and which are left alone.
func TestScale(t *testing.T) {
	tests := []struct {
		in     string
		factor float64
		want   string
		ok     bool
	}{
		{"200 lbs", 0.5, "100 lbs", true},
		{"75 kg", 0.6, "45 kg", true},
		{"135 lbs", 1.0 / 3, "45 lbs", true},
		{"bodyweight", 0.5, "bodyweight", false},
		{"", 0.5, "", false},
		{"light", 0.5, "light", false},
	}
	for _, tt := range tests {
		got, ok := Scale(tt.in, tt.factor)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Scale(%q, %v) = %q, %v; want %q, %v", tt.in, tt.factor, got, ok, tt.want, tt.ok)
		}
	}
}
