package main

import (
	"strings"
	"testing"

	"github.com/oukeidos/vekotin/internal/geometry"
)

func TestPlace(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"Snap", []string{"place", "snap", "--window", "18,300,200,100", "--area", "0,0,1920,1080"}, "0,300,200,100"},
		{"ConstrainLeft", []string{"place", "constrain", "--window", "-50,100,200,100", "--area", "0,0,1920,1080"}, "0,100,200,100"},
		{"ConstrainRight", []string{"place", "constrain", "--window", "1800,100,200,100", "--area", "0,0,1920,1080"}, "1720,100,200,100"},
		{"SnapWithMargin", []string{"place", "snap", "--window", "18,300,200,100", "--area", "0,0,1920,1080", "--margin", "4"}, "4,300,200,100"},
		{"Both", []string{"place", "both", "--window", "1710,-30,200,100", "--area", "0,0,1920,1080"}, "1720,0,200,100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := executeCommand(t, tc.args...)
			if err != nil {
				t.Fatalf("place: %v (%s)", err, out)
			}
			if strings.TrimSpace(out) != tc.want {
				t.Fatalf("got %q, want %q", strings.TrimSpace(out), tc.want)
			}
		})
	}
}

func TestPlace_DefaultAreaFromDisplay(t *testing.T) {
	prev := systemDisplay
	defer func() { systemDisplay = prev }()
	systemDisplay = func() geometry.Display {
		return geometry.Layout{{
			Bounds:   geometry.RectFromBounds(0, 0, 1280, 800),
			WorkArea: geometry.RectFromBounds(0, 0, 1280, 760),
			Primary:  true,
		}}
	}

	out, err := executeCommand(t, "place", "constrain", "--window", "1200,700,200,100")
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if strings.TrimSpace(out) != "1080,660,200,100" {
		t.Fatalf("got %q", out)
	}
}

func TestPlace_InvalidInput(t *testing.T) {
	for _, args := range [][]string{
		{"place", "snap"},
		{"place", "snap", "--window", "1,2,3"},
		{"place", "snap", "--window", "a,b,c,d"},
		{"place", "snap", "--window", "0,0,0,10"},
		{"place", "snap", "--window", "0,0,10,10", "--area", "10,10,0,0"},
	} {
		if _, err := executeCommand(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}
