package geometry

import "testing"

var fullHD = RectFromBounds(0, 0, 1920, 1080)

func TestSnapToNearestEdge(t *testing.T) {
	cases := []struct {
		name string
		win  Rect
		want Rect
	}{
		{"LeftWithinDistance", RectFromBounds(18, 300, 200, 100), RectFromBounds(0, 300, 200, 100)},
		{"TopWithinDistance", RectFromBounds(500, 15, 200, 100), RectFromBounds(500, 0, 200, 100)},
		{"RightWithinDistance", RectFromBounds(1705, 400, 200, 100), RectFromBounds(1720, 400, 200, 100)},
		{"BottomWithinDistance", RectFromBounds(800, 990, 200, 100), RectFromBounds(800, 980, 200, 100)},
		{"ExactlyAtDistance", RectFromBounds(20, 300, 200, 100), RectFromBounds(0, 300, 200, 100)},
		{"BeyondDistance", RectFromBounds(21, 300, 200, 100), RectFromBounds(21, 300, 200, 100)},
		{"TieGoesLeftBeforeTop", RectFromBounds(10, 10, 200, 100), RectFromBounds(0, 10, 200, 100)},
		{"TieGoesTopBeforeRight", RectFromBounds(1710, 10, 200, 100), RectFromBounds(1710, 0, 200, 100)},
		{"OutsideSnapsBack", RectFromBounds(-12, 300, 200, 100), RectFromBounds(0, 300, 200, 100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SnapToNearestEdge(tc.win, fullHD)
			if got != tc.want {
				t.Fatalf("SnapToNearestEdge(%v) = %v, want %v", tc.win, got, tc.want)
			}
			if got.Width() != tc.win.Width() || got.Height() != tc.win.Height() {
				t.Fatalf("size changed: %v -> %v", tc.win, got)
			}
		})
	}
}

func TestSnap_Margin(t *testing.T) {
	e := Engine{SnapDistance: 20, SnapMargin: 8}
	got := e.Snap(RectFromBounds(1705, 400, 200, 100), fullHD)
	if got.Left != 1712 {
		t.Fatalf("Left = %d, want 1712", got.Left)
	}
}

func TestSnap_MarginKeepsSnappedEdge(t *testing.T) {
	e := Engine{SnapDistance: 20, SnapMargin: 8}
	once := e.Snap(RectFromBounds(3, 5, 200, 100), fullHD)
	if once != RectFromBounds(8, 5, 200, 100) {
		t.Fatalf("first Snap = %v, want left at 8", once)
	}
	if twice := e.Snap(once, fullHD); twice != once {
		t.Fatalf("second Snap moved %v to %v", once, twice)
	}
}

func TestSnapToNearestEdge_Idempotent(t *testing.T) {
	engines := []Engine{DefaultEngine, {SnapDistance: 20, SnapMargin: 8}, {SnapDistance: 40, SnapMargin: 25}}
	areas := []Rect{fullHD, RectFromBounds(1920, 40, 1280, 984), RectFromBounds(-1280, 0, 1280, 1024)}
	for _, e := range engines {
		for _, area := range areas {
			for x := area.Left - 60; x <= area.Right+60; x += 7 {
				for y := area.Top - 60; y <= area.Bottom+60; y += 11 {
					for _, size := range [][2]int{{200, 100}, {255, 210}} {
						win := RectFromBounds(x, y, size[0], size[1])
						once := e.Snap(win, area)
						if twice := e.Snap(once, area); twice != once {
							t.Fatalf("%+v: not idempotent for %v in %v: %v then %v", e, win, area, once, twice)
						}
					}
				}
			}
		}
	}
}

func TestConstrainToScreen(t *testing.T) {
	cases := []struct {
		name string
		win  Rect
		want Rect
	}{
		{"LeftOverflow", RectFromBounds(-50, 100, 200, 100), RectFromBounds(0, 100, 200, 100)},
		{"RightOverflow", RectFromBounds(1800, 100, 200, 100), RectFromBounds(1720, 100, 200, 100)},
		{"TopOverflow", RectFromBounds(100, -5, 200, 100), RectFromBounds(100, 0, 200, 100)},
		{"BottomOverflow", RectFromBounds(100, 1000, 200, 100), RectFromBounds(100, 980, 200, 100)},
		{"Inside", RectFromBounds(100, 100, 200, 100), RectFromBounds(100, 100, 200, 100)},
		{"WiderThanArea", RectFromBounds(300, 100, 2500, 100), RectFromBounds(0, 100, 2500, 100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConstrainToScreen(tc.win, fullHD); got != tc.want {
				t.Fatalf("ConstrainToScreen(%v) = %v, want %v", tc.win, got, tc.want)
			}
		})
	}
}

func TestConstrainToScreen_Idempotent(t *testing.T) {
	areas := []Rect{fullHD, RectFromBounds(1920, 40, 1280, 984), RectFromBounds(-1280, 0, 1280, 1024)}
	for _, area := range areas {
		for x := -3000; x <= 4000; x += 137 {
			for y := -2000; y <= 2000; y += 211 {
				for _, size := range [][2]int{{200, 100}, {1500, 900}, {3000, 2000}} {
					win := RectFromBounds(x, y, size[0], size[1])
					once := ConstrainToScreen(win, area)
					twice := ConstrainToScreen(once, area)
					if once != twice {
						t.Fatalf("not idempotent for %v in %v: %v then %v", win, area, once, twice)
					}
					if size[0] <= area.Width() && (once.Left < area.Left || once.Right > area.Right) {
						t.Fatalf("%v escapes %v horizontally", once, area)
					}
				}
			}
		}
	}
}

func TestPlace(t *testing.T) {
	win := RectFromBounds(1710, -30, 200, 100)
	got := DefaultEngine.Place(win, fullHD, Placement{Snap: true, Constrain: true})
	if got != RectFromBounds(1720, 0, 200, 100) {
		t.Fatalf("Place() = %v", got)
	}
	if DefaultEngine.Place(win, fullHD, Placement{}) != win {
		t.Fatalf("empty placement moved the window")
	}
}

func TestRect(t *testing.T) {
	r := RectFromBounds(10, 20, 30, 40)
	if r.Width() != 30 || r.Height() != 40 || r.Right != 40 || r.Bottom != 60 {
		t.Fatalf("RectFromBounds = %v", r)
	}
	if got := r.MoveTo(0, 0); got != RectFromBounds(0, 0, 30, 40) {
		t.Fatalf("MoveTo = %v", got)
	}
	if got := r.Intersect(RectFromBounds(100, 100, 5, 5)); !got.Empty() || got.Area() != 0 {
		t.Fatalf("disjoint Intersect = %v", got)
	}
	if got := r.Intersect(RectFromBounds(20, 30, 100, 100)); got != (Rect{20, 30, 40, 60}) {
		t.Fatalf("Intersect = %v", got)
	}
}
