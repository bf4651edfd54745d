package patient

import (
	"math"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestFullName(t *testing.T) {
	p := &Patient{FirstName: "Ana", LastName: "Silva"}
	if got := p.FullName(); got != "Ana Silva" {
		t.Errorf("expected 'Ana Silva', got %q", got)
	}

	p = &Patient{FirstName: "Ana"}
	if got := p.FullName(); got != "Ana" {
		t.Errorf("expected 'Ana', got %q", got)
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ana", "Silva", "AS"},
		{"ana", "silva", "AS"},
		{"Ana", "", "A"},
		{"", "Silva", "S"},
		{"", "", ""},
		{"Édouard", "Østergaard", "ÉØ"},
	}
	for _, tt := range tests {
		p := &Patient{FirstName: tt.first, LastName: tt.last}
		if got := p.Initials(); got != tt.want {
			t.Errorf("Initials(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestBMI(t *testing.T) {
	p := &Patient{HeightCM: floatPtr(170), WeightKG: floatPtr(85)}
	bmi, ok := p.BMI()
	if !ok {
		t.Fatal("expected BMI to be computable")
	}
	want := 85.0 / (1.7 * 1.7)
	if math.Abs(bmi-want) > 1e-9 {
		t.Errorf("expected BMI %.4f, got %.4f", want, bmi)
	}
}

func TestBMI_MissingMeasurements(t *testing.T) {
	cases := []*Patient{
		{},
		{HeightCM: floatPtr(170)},
		{WeightKG: floatPtr(85)},
		{HeightCM: floatPtr(0), WeightKG: floatPtr(85)},
		{HeightCM: floatPtr(170), WeightKG: floatPtr(-1)},
	}
	for i, p := range cases {
		if _, ok := p.BMI(); ok {
			t.Errorf("case %d: expected BMI to be unavailable", i)
		}
	}
}
